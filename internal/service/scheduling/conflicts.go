package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ConflictCounter считает активные записи сотрудника, пересекающиеся с интервалом.
// Отмененные и завершенные записи место не занимают.
type ConflictCounter struct {
	repo OverlapCounter
}

// NewConflictCounter создает новый ConflictCounter
func NewConflictCounter(repo OverlapCounter) *ConflictCounter {
	return &ConflictCounter{repo: repo}
}

// CountActive возвращает число активных записей, пересекающихся с [start, end).
// Выполняется в транзакции вызывающего, если она есть в контексте.
func (c *ConflictCounter) CountActive(ctx context.Context, staffID int64, start, end time.Time, excludeID *int64) (int, error) {
	count, err := c.repo.CountOverlapping(ctx, staffID, start, end, domain.ActiveStatuses, excludeID)
	if err != nil {
		return 0, fmt.Errorf("%w: CountActive - repository error: %v", ErrInternal, err)
	}
	return count, nil
}
