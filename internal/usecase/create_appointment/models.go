package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID    int64
	StaffID     int64
	TreatmentID int64
	StartTime   time.Time
	EndTime     time.Time

	Status        *domain.AppointmentStatus // по умолчанию pending
	Price         *float64                  // по умолчанию цена услуги
	PaymentMethod *string
	PaymentStatus *domain.PaymentStatus // по умолчанию pending
	Notes         *string
}
