package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
)

// UseCase use case для получения свободных слотов сотрудника на дату
type UseCase struct {
	staffRepo     StaffRepository
	treatmentRepo TreatmentRepository
	catalog       Catalog
	appointments  AppointmentRepository
	location      *time.Location
	options       Options
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	staffRepo StaffRepository,
	treatmentRepo TreatmentRepository,
	catalog Catalog,
	appointments AppointmentRepository,
	location *time.Location,
	options Options,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		staffRepo:     staffRepo,
		treatmentRepo: treatmentRepo,
		catalog:       catalog,
		appointments:  appointments,
		location:      location,
		options:       options,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case получения свободных слотов
// Слоты только подсказка: при записи расписание проверяется заново под блокировкой
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: staff=%d, treatment=%d, date=%s", req.StaffID, req.TreatmentID, req.Date)

	// 1. Валидация входных данных
	date, err := validateRequest(req, uc.location)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Дата в пределах горизонта записи
	if err := validateDate(date, now, uc.options.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Сотрудник и услуга
	if _, err := uc.staffRepo.GetStaff(ctx, req.StaffID); err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailableSlots: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	treatment, err := uc.treatmentRepo.GetTreatment(ctx, req.TreatmentID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrTreatmentNotFound) {
			uc.logger.Warn("GetAvailableSlots: treatment id=%d not found", req.TreatmentID)
			return nil, ErrTreatmentNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get treatment id=%d: %v", req.TreatmentID, err)
		return nil, fmt.Errorf("%w: failed to get treatment: %v", ErrInternal, err)
	}

	if treatment.DurationMinutes <= 0 {
		uc.logger.Warn("GetAvailableSlots: treatment id=%d has no duration", treatment.ID)
		return nil, fmt.Errorf("%w: treatment has no duration", ErrInvalidInput)
	}

	response := &Response{
		Date:        req.Date,
		StaffID:     req.StaffID,
		TreatmentID: req.TreatmentID,
		Slots:       []Slot{},
	}

	// 4. Блоки доступности на день недели
	blocks, err := uc.catalog.Lookup(ctx, req.StaffID, date.Weekday())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to lookup availability: %v", err)
		return nil, fmt.Errorf("%w: failed to lookup availability: %v", ErrInternal, err)
	}
	if len(blocks) == 0 {
		uc.logger.Info("GetAvailableSlots: staff=%d is not available on %s", req.StaffID, date.Weekday())
		return response, nil
	}

	// 5. Нарезаем блоки на слоты
	notBefore := now.Add(time.Duration(uc.options.MinNoticeMinutes) * time.Minute)
	candidates, err := generateCandidates(blocks, date, treatment.DurationMinutes, notBefore)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	if len(candidates) == 0 {
		uc.logger.Info("GetAvailableSlots: no slots left for staff=%d on %s", req.StaffID, req.Date)
		return response, nil
	}

	// 6. Активные записи за весь охват слотов одним запросом
	from, to := span(candidates)
	busy, err := uc.appointments.ListOverlapping(ctx, req.StaffID, from, to, domain.ActiveStatuses)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to load appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to load appointments: %v", ErrInternal, err)
	}

	// 7. Свободные места в каждом слоте
	for _, c := range candidates {
		available := c.block.MaxConcurrent - countOverlapping(busy, c.start, c.end)
		if available < 0 {
			available = 0
		}

		response.Slots = append(response.Slots, Slot{
			BlockID:         c.block.ID,
			StartTime:       c.start,
			EndTime:         c.end,
			DurationMinutes: treatment.DurationMinutes,
			AvailableSpots:  available,
			TotalSpots:      c.block.MaxConcurrent,
		})
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for staff=%d, treatment=%d, date=%s",
		len(response.Slots), req.StaffID, req.TreatmentID, req.Date)

	return response, nil
}
