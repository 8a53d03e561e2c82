package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BlockRepository интерфейс репозитория блоков доступности
type BlockRepository interface {
	LockStaff(ctx context.Context, staffID int64) error
	Create(ctx context.Context, block *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error)
	GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error)
	ListByStaff(ctx context.Context, staffID int64) ([]*domain.AvailabilityBlock, error)
	Delete(ctx context.Context, id int64) error
}

// BlockFinder источник блоков на день недели (репозиторий или кэш поверх него)
type BlockFinder interface {
	FindByStaffAndDay(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error)
}

// CacheInvalidator сбрасывает закэшированные блоки после изменений
type CacheInvalidator interface {
	Invalidate(ctx context.Context, staffID int64, day time.Weekday) error
}

// StaffRepository интерфейс справочника сотрудников
type StaffRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
