package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LockStaff(ctx context.Context, staffIDs ...int64) error
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// ClientRepository интерфейс справочника клиентов
type ClientRepository interface {
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
}

// StaffRepository интерфейс справочника сотрудников
type StaffRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

// TreatmentRepository интерфейс справочника услуг
type TreatmentRepository interface {
	GetTreatment(ctx context.Context, id int64) (*domain.Treatment, error)
}

// ScheduleValidator проверка доступности и вместимости
type ScheduleValidator interface {
	Validate(ctx context.Context, staffID int64, start, end time.Time, excludeID *int64) (*domain.AvailabilityBlock, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier постановка уведомлений в очередь
type Notifier interface {
	AppointmentCreated(appt *domain.Appointment)
	AppointmentConfirmed(appt *domain.Appointment, role notifications.Role)
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
