package update_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	if req.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	for name, id := range map[string]*int64{"clientId": req.ClientID, "staffId": req.StaffID, "treatmentId": req.TreatmentID} {
		if id != nil && *id <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidInput, name)
		}
	}

	if (req.StartTime != nil && req.StartTime.IsZero()) || (req.EndTime != nil && req.EndTime.IsZero()) {
		return fmt.Errorf("%w: startTime and endTime must not be empty", ErrInvalidInput)
	}

	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
	}

	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return fmt.Errorf("%w: unknown paymentStatus %q", ErrInvalidInput, *req.PaymentStatus)
	}

	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	if req.PaymentMethod != nil && len(*req.PaymentMethod) > domain.MaxPaymentMethodLength {
		return fmt.Errorf("%w: paymentMethod must be at most %d characters", ErrInvalidInput, domain.MaxPaymentMethodLength)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// applyPatch возвращает копию записи с примененными изменениями
func applyPatch(current *domain.Appointment, req *Request) *domain.Appointment {
	next := *current
	next.Client, next.Staff, next.Treatment = nil, nil, nil

	if req.ClientID != nil {
		next.ClientID = *req.ClientID
	}
	if req.StaffID != nil {
		next.StaffID = *req.StaffID
	}
	if req.TreatmentID != nil {
		next.TreatmentID = *req.TreatmentID
	}
	if req.StartTime != nil {
		next.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		next.EndTime = *req.EndTime
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if req.Price != nil {
		next.Price = *req.Price
	}
	if req.PaymentMethod != nil {
		next.PaymentMethod = req.PaymentMethod
	}
	if req.PaymentStatus != nil {
		next.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		next.Notes = req.Notes
	}

	return &next
}

// checkTransition проверяет допустимость перехода статуса
func checkTransition(current, next *domain.Appointment) error {
	if !domain.CanTransition(current.Status, next.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next.Status)
	}
	return nil
}

// outcome классифицирует результат для метрик
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case scheduling.IsRejection(err),
		errors.Is(err, domain.ErrCompletedRequiresPayment),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ErrConcurrentUpdate):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrClientNotFound),
		errors.Is(err, ErrStaffNotFound), errors.Is(err, ErrTreatmentNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
