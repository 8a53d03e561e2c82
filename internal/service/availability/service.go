package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service каталог недельной доступности сотрудников
type Service struct {
	blockRepo BlockRepository
	finder    BlockFinder
	staffRepo StaffRepository
	cache     CacheInvalidator
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр каталога доступности
// finder может быть кэшем поверх blockRepo, cache может быть nil
func NewService(
	blockRepo BlockRepository,
	finder BlockFinder,
	staffRepo StaffRepository,
	cache CacheInvalidator,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		blockRepo: blockRepo,
		finder:    finder,
		staffRepo: staffRepo,
		cache:     cache,
		txManager: txManager,
		logger:    logger,
	}
}

// Lookup возвращает блоки доступности сотрудника на день недели в порядке каталога
// Пустой список - корректный результат: сотрудник в этот день недоступен
func (s *Service) Lookup(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	blocks, err := s.finder.FindByStaffAndDay(ctx, staffID, day)
	if err != nil {
		s.logger.Error("Lookup: failed to find blocks for staff=%d, day=%s: %v", staffID, day, err)
		return nil, fmt.Errorf("%w: Lookup - repository error: %v", ErrInternal, err)
	}
	return blocks, nil
}

// Create создает блок доступности
// Блоки одного сотрудника в один день недели не должны пересекаться
func (s *Service) Create(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("Create: creating block for staff=%d, day=%d, %s-%s, max=%d",
		req.StaffID, req.DayOfWeek, req.StartTime, req.EndTime, req.MaxConcurrent)

	block, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.staffRepo.GetStaff(ctx, req.StaffID); err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			s.logger.Warn("Create: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("Create: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	var created *domain.AvailabilityBlock
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.blockRepo.LockStaff(txCtx, req.StaffID); err != nil {
			return fmt.Errorf("%w: failed to lock staff: %v", ErrInternal, err)
		}

		existing, err := s.blockRepo.ListByStaff(txCtx, req.StaffID)
		if err != nil {
			return fmt.Errorf("%w: failed to list blocks: %v", ErrInternal, err)
		}

		for _, other := range existing {
			if block.Overlaps(other) {
				return fmt.Errorf("%w: conflicts with block id=%d (%s-%s)",
					ErrOverlappingBlock, other.ID, other.StartTime, other.EndTime)
			}
		}

		created, err = s.blockRepo.Create(txCtx, block)
		if err != nil {
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOverlappingBlock) {
			s.logger.Warn("Create: %v", err)
		} else {
			s.logger.Error("Create: failed to create block for staff=%d: %v", req.StaffID, err)
		}
		return nil, err
	}

	s.invalidate(ctx, created.StaffID, created.DayOfWeek)

	s.logger.Info("Create: successfully created block id=%d", created.ID)
	return models.FromDomainBlock(created), nil
}

// ListByStaff возвращает недельное расписание сотрудника
func (s *Service) ListByStaff(ctx context.Context, staffID int64) (*models.BlockListResponse, error) {
	s.logger.Info("ListByStaff: fetching blocks for staff=%d", staffID)

	if _, err := s.staffRepo.GetStaff(ctx, staffID); err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			s.logger.Warn("ListByStaff: staff id=%d not found", staffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("ListByStaff: failed to get staff id=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}

	blocks, err := s.blockRepo.ListByStaff(ctx, staffID)
	if err != nil {
		s.logger.Error("ListByStaff: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: ListByStaff - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByStaff: successfully fetched %d blocks for staff=%d", len(blocks), staffID)
	return models.FromDomainBlockList(blocks), nil
}

// Delete удаляет блок доступности
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting block id=%d", id)

	block, err := s.blockRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrBlockNotFound) {
			s.logger.Warn("Delete: block id=%d not found", id)
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if err := s.blockRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, availabilityRepo.ErrBlockNotFound) {
			s.logger.Warn("Delete: block id=%d not found during delete", id)
			return ErrBlockNotFound
		}
		s.logger.Error("Delete: repository error for block id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.invalidate(ctx, block.StaffID, block.DayOfWeek)

	s.logger.Info("Delete: successfully deleted block id=%d", id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, staffID int64, day time.Weekday) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, staffID, day); err != nil {
		s.logger.Error("invalidate: failed to invalidate cache for staff=%d, day=%s: %v", staffID, day, err)
	}
}

// validateCreateRequest валидирует запрос и собирает domain модель
func validateCreateRequest(req *models.CreateBlockRequest) (*domain.AvailabilityBlock, error) {
	if req.StaffID <= 0 {
		return nil, fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.DayOfWeek < int(time.Sunday) || req.DayOfWeek > int(time.Saturday) {
		return nil, fmt.Errorf("%w: dayOfWeek must be between 0 (Sunday) and 6 (Saturday)", ErrInvalidInput)
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if !start.IsBefore(end) {
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if req.MaxConcurrent < domain.MinConcurrentAppointments || req.MaxConcurrent > domain.MaxConcurrentAppointments {
		return nil, fmt.Errorf("%w: maxConcurrent must be between %d and %d",
			ErrInvalidInput, domain.MinConcurrentAppointments, domain.MaxConcurrentAppointments)
	}

	return &domain.AvailabilityBlock{
		StaffID:       req.StaffID,
		DayOfWeek:     time.Weekday(req.DayOfWeek),
		StartTime:     start,
		EndTime:       end,
		MaxConcurrent: req.MaxConcurrent,
	}, nil
}
