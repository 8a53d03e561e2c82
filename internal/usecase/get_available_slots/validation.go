package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные и разбирает дату в часовом поясе бизнеса
func validateRequest(req *Request, loc *time.Location) (time.Time, error) {
	if req.StaffID <= 0 {
		return time.Time{}, fmt.Errorf("%w: staffId must be positive", ErrInvalidInput)
	}

	if req.TreatmentID <= 0 {
		return time.Time{}, fmt.Errorf("%w: treatmentId must be positive", ErrInvalidInput)
	}

	if req.Date == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date, err := time.ParseInLocation(domain.DateFormat, req.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	return date, nil
}

// validateDate проверяет, что дата не в прошлом и не дальше горизонта записи
func validateDate(date, now time.Time, advanceBookingDays int) error {
	today := startOfDay(now.In(date.Location()))

	if date.Before(today) {
		return ErrInvalidDate
	}

	if advanceBookingDays == 0 {
		return nil
	}

	if date.After(today.AddDate(0, 0, advanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
