package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrReferenceNotFound возвращается при нарушении внешнего ключа (клиент, сотрудник или услуга удалены)
	ErrReferenceNotFound = errors.New("appointment.repository: referenced entity not found")

	// ErrConstraintViolation возвращается при нарушении CHECK ограничения (start < end, completed => paid)
	ErrConstraintViolation = errors.New("appointment.repository: constraint violation")

	// ErrSerialization возвращается, когда СУБД откатила сериализуемую транзакцию из-за конфликта
	ErrSerialization = errors.New("appointment.repository: serialization failure")

	// ErrNoTransaction возвращается, когда операция требует активной транзакции
	ErrNoTransaction = errors.New("appointment.repository: operation requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
