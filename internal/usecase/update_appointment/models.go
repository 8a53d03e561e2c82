package update_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request частичное обновление записи, nil поля не меняются
type Request struct {
	ID int64

	ClientID    *int64
	StaffID     *int64
	TreatmentID *int64
	StartTime   *time.Time
	EndTime     *time.Time

	Status        *domain.AppointmentStatus
	Price         *float64
	PaymentMethod *string
	PaymentStatus *domain.PaymentStatus
	Notes         *string
}

// IsEmpty true, если запрос ничего не меняет
func (r *Request) IsEmpty() bool {
	return r.ClientID == nil && r.StaffID == nil && r.TreatmentID == nil &&
		r.StartTime == nil && r.EndTime == nil && r.Status == nil && r.Price == nil &&
		r.PaymentMethod == nil && r.PaymentStatus == nil && r.Notes == nil
}

// changes что изменилось по сравнению с сохраненной записью
type changes struct {
	time             bool
	staff            bool
	status           bool
	freshlyConfirmed bool
}

func diff(before, after *domain.Appointment) changes {
	return changes{
		time:             !before.StartTime.Equal(after.StartTime) || !before.EndTime.Equal(after.EndTime),
		staff:            before.StaffID != after.StaffID,
		status:           before.Status != after.Status,
		freshlyConfirmed: before.Status != domain.StatusConfirmed && after.Status == domain.StatusConfirmed,
	}
}

// staffUpdate нужно ли отдельное уведомление сотруднику об изменении.
// Переход в confirmed уведомляется отдельно.
func (c changes) staffUpdate() bool {
	return c.time || c.staff || (c.status && !c.freshlyConfirmed)
}
