package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// StaffRepository интерфейс справочника сотрудников
type StaffRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

// TreatmentRepository интерфейс справочника услуг
type TreatmentRepository interface {
	GetTreatment(ctx context.Context, id int64) (*domain.Treatment, error)
}

// Catalog недельная доступность сотрудника
type Catalog interface {
	Lookup(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error)
}

// AppointmentRepository записи сотрудника, пересекающиеся с интервалом
type AppointmentRepository interface {
	ListOverlapping(ctx context.Context, staffID int64, start, end time.Time, statuses []domain.AppointmentStatus) ([]*domain.Appointment, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
