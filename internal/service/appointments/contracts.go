package appointments

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByClientID(ctx context.Context, clientID int64) ([]*domain.Appointment, error)
	List(ctx context.Context, q domain.AppointmentListQuery) ([]*domain.Appointment, int, error)
	Delete(ctx context.Context, id int64) error
}

// DirectoryRepository интерфейс справочника клиентов, сотрудников и услуг
type DirectoryRepository interface {
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	GetClientsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Client, error)
	GetStaffByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Staff, error)
	GetTreatmentsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Treatment, error)
}

// Metrics интерфейс метрик операций с записями
type Metrics interface {
	ObserveAppointment(operation, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
