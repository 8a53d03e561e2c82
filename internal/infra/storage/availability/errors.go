package availability

import "errors"

var (
	// ErrBlockNotFound возвращается, когда блок доступности не найден
	ErrBlockNotFound = errors.New("availability.repository: block not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrNoTransaction возвращается, когда операция требует активной транзакции
	ErrNoTransaction = errors.New("availability.repository: operation requires a transaction")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)
