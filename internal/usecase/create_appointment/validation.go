package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientId must be positive", ErrInvalidInput)
	}

	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffId must be positive", ErrInvalidInput)
	}

	if req.TreatmentID <= 0 {
		return fmt.Errorf("%w: treatmentId must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
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

// outcome классифицирует результат для метрик
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case scheduling.IsRejection(err), errors.Is(err, domain.ErrCompletedRequiresPayment):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrStaffNotFound), errors.Is(err, ErrTreatmentNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
