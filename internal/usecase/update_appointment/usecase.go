package update_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
)

const operation = "update"

// UseCase use case для изменения записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	clientRepo      ClientRepository
	staffRepo       StaffRepository
	treatmentRepo   TreatmentRepository
	validator       ScheduleValidator
	txManager       TransactionManager
	notifier        Notifier
	metrics         Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	clientRepo ClientRepository,
	staffRepo StaffRepository,
	treatmentRepo TreatmentRepository,
	validator ScheduleValidator,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		clientRepo:      clientRepo,
		staffRepo:       staffRepo,
		treatmentRepo:   treatmentRepo,
		validator:       validator,
		txManager:       txManager,
		notifier:        notifier,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute выполняет use case изменения записи
// Расписание проверяется всегда, сама запись исключается из подсчета занятости
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	updated, err := uc.execute(ctx, req)
	uc.metrics.ObserveAppointment(operation, outcome(err))
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(updated), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("UpdateAppointment: id=%d", req.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем текущую запись
	current, err := uc.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// 3. Проверяем существование сущностей из patch
	rel, err := uc.loadPatchedRelations(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Итоговые значения и допустимость перехода статуса
	next := applyPatch(current, req)
	if err := checkTransition(current, next); err != nil {
		uc.logger.Warn("UpdateAppointment: id=%d rejected: %v", req.ID, err)
		return nil, err
	}

	var result, before *domain.Appointment

	// 5. Проверка расписания и сохранение в одной транзакции (READ COMMITTED)
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 5.1. Блокируем прежнего и нового сотрудника
		if err := uc.appointmentRepo.LockStaff(txCtx, current.StaffID, next.StaffID); err != nil {
			uc.logger.Error("UpdateAppointment: failed to lock staff: %v", err)
			return fmt.Errorf("%w: failed to lock staff: %v", ErrInternal, err)
		}

		// 5.2. Перечитываем запись под блокировкой
		locked, err := uc.load(txCtx, req.ID)
		if err != nil {
			return err
		}
		if locked.StaffID != current.StaffID {
			uc.logger.Warn("UpdateAppointment: id=%d moved to staff=%d concurrently", req.ID, locked.StaffID)
			return ErrConcurrentUpdate
		}

		target := applyPatch(locked, req)
		if err := checkTransition(locked, target); err != nil {
			uc.logger.Warn("UpdateAppointment: id=%d rejected: %v", req.ID, err)
			return err
		}

		// 5.3. Доступность и вместимость без учета самой записи
		if _, err := uc.validator.Validate(txCtx, target.StaffID, target.StartTime, target.EndTime, &target.ID); err != nil {
			if scheduling.IsRejection(err) {
				uc.logger.Warn("UpdateAppointment: rejected for staff=%d: %v", target.StaffID, err)
				return err
			}
			uc.logger.Error("UpdateAppointment: schedule validation failed: %v", err)
			return fmt.Errorf("%w: schedule validation failed: %v", ErrInternal, err)
		}

		// 5.4. completed без оплаты отклоняется по итоговым статусу и оплате
		if err := domain.CheckPayment(target.Status, target.PaymentStatus); err != nil {
			uc.logger.Warn("UpdateAppointment: id=%d rejected: %v", req.ID, err)
			return err
		}

		// 5.5. Сохраняем
		updated, err := uc.appointmentRepo.Update(txCtx, target)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			uc.logger.Error("UpdateAppointment: failed to update appointment id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
		}

		before, result = locked, updated
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("UpdateAppointment: successfully updated appointment id=%d", result.ID)

	uc.attachRelations(ctx, result, rel)
	uc.notify(before, result)

	return result, nil
}

func (uc *UseCase) load(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := uc.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("UpdateAppointment: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	return appt, nil
}

// notify уведомления по итогам изменения
func (uc *UseCase) notify(before, after *domain.Appointment) {
	c := diff(before, after)

	if c.freshlyConfirmed {
		uc.notifier.AppointmentConfirmed(after, notifications.RoleClient)
		uc.notifier.AppointmentConfirmed(after, notifications.RoleStaff)
	}
	if c.staffUpdate() {
		uc.notifier.AppointmentUpdated(after)
	}
}
