package scheduling

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Catalog источник недельной доступности сотрудников
type Catalog interface {
	Lookup(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error)
}

// OverlapCounter интерфейс репозитория записей для подсчета пересечений
type OverlapCounter interface {
	CountOverlapping(
		ctx context.Context,
		staffID int64,
		start, end time.Time,
		statuses []domain.AppointmentStatus,
		excludeID *int64,
	) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
