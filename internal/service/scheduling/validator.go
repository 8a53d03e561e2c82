package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Validator проверяет, что интервал записи укладывается в доступность сотрудника
// и не превышает вместимость блока
type Validator struct {
	catalog  Catalog
	conflict *ConflictCounter
	clock    *Clock
	logger   Logger
}

// NewValidator создает новый Validator
func NewValidator(catalog Catalog, conflict *ConflictCounter, clock *Clock, logger Logger) *Validator {
	return &Validator{
		catalog:  catalog,
		conflict: conflict,
		clock:    clock,
		logger:   logger,
	}
}

// Validate возвращает блок, в который попадает интервал, или *RejectionError.
// excludeID исключает изменяемую запись из подсчета занятости.
func (v *Validator) Validate(
	ctx context.Context,
	staffID int64,
	start, end time.Time,
	excludeID *int64,
) (*domain.AvailabilityBlock, error) {
	if !start.Before(end) {
		return nil, reject(ErrNonPositiveDuration, staffID, "start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	window := v.clock.Window(start, end)

	blocks, err := v.catalog.Lookup(ctx, staffID, window.Weekday)
	if err != nil {
		v.logger.Error("Validate: failed to lookup availability for staff=%d, day=%s: %v", staffID, window.Weekday, err)
		return nil, fmt.Errorf("%w: failed to lookup availability: %v", ErrInternal, err)
	}

	matching, err := firstMatching(blocks, window)
	if err != nil {
		v.logger.Error("Validate: corrupted availability for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if matching == nil {
		v.logger.Warn("Validate: staff=%d has no block for %s %s-%s (%d blocks that day)",
			staffID, window.Weekday, window.Start(), window.End(), len(blocks))
		return nil, reject(ErrOutsideAvailability, staffID, "%s %s-%s",
			window.Weekday, window.Start(), window.End())
	}

	active, err := v.conflict.CountActive(ctx, staffID, start, end, excludeID)
	if err != nil {
		v.logger.Error("Validate: failed to count overlapping appointments for staff=%d: %v", staffID, err)
		return nil, err
	}

	// maxConcurrent = 1 означает эксклюзивную запись: допустимо active = 0
	if active >= matching.MaxConcurrent {
		v.logger.Warn("Validate: staff=%d block id=%d is full, %d/%d taken",
			staffID, matching.ID, active, matching.MaxConcurrent)
		return nil, reject(ErrCapacityExceeded, staffID, "%d of %d places taken",
			active, matching.MaxConcurrent)
	}

	v.logger.Info("Validate: staff=%d fits block id=%d, %d/%d taken",
		staffID, matching.ID, active, matching.MaxConcurrent)
	return matching, nil
}

// firstMatching возвращает первый блок в порядке каталога, содержащий интервал.
// Пересекающиеся блоки не объединяются.
func firstMatching(blocks []*domain.AvailabilityBlock, window LocalWindow) (*domain.AvailabilityBlock, error) {
	for _, block := range blocks {
		blockStart, err := block.StartTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("block id=%d: invalid start time: %v", block.ID, err)
		}
		blockEnd, err := block.EndTime.Minutes()
		if err != nil {
			return nil, fmt.Errorf("block id=%d: invalid end time: %v", block.ID, err)
		}
		if window.Fits(blockStart, blockEnd) {
			return block, nil
		}
	}
	return nil, nil
}
