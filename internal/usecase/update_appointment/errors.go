package update_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("update_appointment: appointment not found")

	// ErrClientNotFound возвращается, когда клиент из patch не найден
	ErrClientNotFound = errors.New("update_appointment: client not found")

	// ErrStaffNotFound возвращается, когда сотрудник из patch не найден
	ErrStaffNotFound = errors.New("update_appointment: staff not found")

	// ErrTreatmentNotFound возвращается, когда услуга из patch не найдена
	ErrTreatmentNotFound = errors.New("update_appointment: treatment not found")

	// ErrConcurrentUpdate возвращается, когда запись перенесли к другому сотруднику параллельным запросом
	ErrConcurrentUpdate = errors.New("update_appointment: appointment was modified concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_appointment: internal error")
)
