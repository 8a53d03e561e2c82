package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailabilityBlock is a recurring weekly window in which a staff member accepts appointments.
// The window is half-open: [StartTime, EndTime) in the business timezone.
type AvailabilityBlock struct {
	ID            int64
	StaffID       int64
	DayOfWeek     time.Weekday
	StartTime     types.TimeString
	EndTime       types.TimeString
	MaxConcurrent int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExclusive returns true if the block admits a single appointment at a time
func (b *AvailabilityBlock) IsExclusive() bool {
	return b.MaxConcurrent == 1
}

// Overlaps reports whether two blocks of the same weekday share any minute
func (b *AvailabilityBlock) Overlaps(other *AvailabilityBlock) bool {
	if b.DayOfWeek != other.DayOfWeek {
		return false
	}
	return b.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(b.EndTime)
}
