package update_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	updateAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
)

// UpdateAppointmentRequest HTTP request model, отсутствующие поля не меняются
type UpdateAppointmentRequest struct {
	ClientID      *int64     `json:"clientId,omitempty"`
	StaffID       *int64     `json:"staffId,omitempty"`
	TreatmentID   *int64     `json:"treatmentId,omitempty"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
	PaymentStatus *string    `json:"paymentStatus,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateAppointmentRequest) ToUseCaseRequest(id int64) *updateAppointment.Request {
	req := &updateAppointment.Request{
		ID:            id,
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
