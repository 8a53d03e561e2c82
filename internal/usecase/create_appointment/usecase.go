package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const operation = "create"

// UseCase use case для создания записи
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

// Execute выполняет use case создания записи
// Проверка расписания и сохранение выполняются в одной транзакции
// под advisory lock сотрудника
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	created, err := uc.execute(ctx, req)
	uc.metrics.ObserveAppointment(operation, outcome(err))
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(created), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("CreateAppointment: client=%d, staff=%d, treatment=%d, %s - %s",
		req.ClientID, req.StaffID, req.TreatmentID, req.StartTime, req.EndTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем существование клиента, сотрудника и услуги
	client, err := uc.clientRepo.GetClient(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrClientNotFound) {
			uc.logger.Warn("CreateAppointment: client id=%d not found", req.ClientID)
			return nil, ErrClientNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get client id=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
	}

	staff, err := uc.staffRepo.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			uc.logger.Warn("CreateAppointment: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	treatment, err := uc.treatmentRepo.GetTreatment(ctx, req.TreatmentID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrTreatmentNotFound) {
			uc.logger.Warn("CreateAppointment: treatment id=%d not found", req.TreatmentID)
			return nil, ErrTreatmentNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get treatment id=%d: %v", req.TreatmentID, err)
		return nil, fmt.Errorf("%w: failed to get treatment: %v", ErrInternal, err)
	}

	appt := &domain.Appointment{
		ClientID:      req.ClientID,
		StaffID:       req.StaffID,
		TreatmentID:   req.TreatmentID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        ptr.Value(req.Status, domain.StatusPending),
		Price:         ptr.Value(req.Price, treatment.Price),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: ptr.Value(req.PaymentStatus, domain.PaymentPending),
		Notes:         req.Notes,
	}

	var result *domain.Appointment

	// 3. Проверка расписания и сохранение в одной транзакции (READ COMMITTED)
	// Каждый запрос после блокировки видит записи, зафиксированные до её получения
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Сериализуем записи к одному сотруднику
		if err := uc.appointmentRepo.LockStaff(txCtx, appt.StaffID); err != nil {
			uc.logger.Error("CreateAppointment: failed to lock staff=%d: %v", appt.StaffID, err)
			return fmt.Errorf("%w: failed to lock staff: %v", ErrInternal, err)
		}

		// 3.2. Доступность и вместимость
		block, err := uc.validator.Validate(txCtx, appt.StaffID, appt.StartTime, appt.EndTime, nil)
		if err != nil {
			if scheduling.IsRejection(err) {
				uc.logger.Warn("CreateAppointment: rejected for staff=%d: %v", appt.StaffID, err)
				return err
			}
			uc.logger.Error("CreateAppointment: schedule validation failed: %v", err)
			return fmt.Errorf("%w: schedule validation failed: %v", ErrInternal, err)
		}

		uc.logger.Info("CreateAppointment: slot available in block id=%d", block.ID)

		// 3.3. completed без оплаты отклоняется при любом расписании
		if err := domain.CheckPayment(appt.Status, appt.PaymentStatus); err != nil {
			uc.logger.Warn("CreateAppointment: status=%s with paymentStatus=%s rejected", appt.Status, appt.PaymentStatus)
			return err
		}

		// 3.4. Сохраняем запись
		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	result.Client = client
	result.Staff = staff
	result.Treatment = treatment

	// 4. Уведомления отправляются асинхронно и не влияют на результат
	uc.notifier.AppointmentCreated(result)
	if result.Status == domain.StatusConfirmed {
		uc.notifier.AppointmentConfirmed(result, notifications.RoleClient)
	}

	return result, nil
}
