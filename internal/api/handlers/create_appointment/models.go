package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ClientID      int64     `json:"clientId"`
	StaffID       int64     `json:"staffId"`
	TreatmentID   int64     `json:"treatmentId"`
	StartTime     time.Time `json:"startTime"` // RFC3339
	EndTime       time.Time `json:"endTime"`
	Status        *string   `json:"status,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
	PaymentStatus *string   `json:"paymentStatus,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Значения статусов проверяет use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() *createAppointment.Request {
	req := &createAppointment.Request{
		ClientID:      r.ClientID,
		StaffID:       r.StaffID,
		TreatmentID:   r.TreatmentID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Price:         r.Price,
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
	if r.Status != nil {
		status := domain.AppointmentStatus(*r.Status)
		req.Status = &status
	}
	if r.PaymentStatus != nil {
		payment := domain.PaymentStatus(*r.PaymentStatus)
		req.PaymentStatus = &payment
	}
	return req
}
