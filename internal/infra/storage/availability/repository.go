package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var blockColumns = []string{
	"id",
	"staff_id",
	"day_of_week",
	"start_time",
	"end_time",
	"max_concurrent",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с недельными блоками доступности сотрудников
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блоков доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockStaff берет транзакционную advisory-блокировку сотрудника
// Ключ общий с репозиторием записей: изменение расписания не идет параллельно с записью к сотруднику
func (r *Repository) LockStaff(ctx context.Context, staffID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", staffID); err != nil {
		return fmt.Errorf("%w: LockStaff - staff_id=%d: %v", ErrExecQuery, staffID, err)
	}
	return nil
}

// Create создает новый блок доступности
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, block *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_blocks").
		Columns("staff_id", "day_of_week", "start_time", "end_time", "max_concurrent").
		Values(block.StaffID, int(block.DayOfWeek), block.StartTime, block.EndTime, block.MaxConcurrent).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	block.CreatedAt = createdAt.Time
	block.UpdatedAt = updatedAt.Time

	return block, nil
}

// GetByID получает блок доступности по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("availability_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	block, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan block: %v", ErrScanRow, err)
	}

	return block, nil
}

// FindByStaffAndDay получает блоки сотрудника на день недели
// Порядок стабильный (start_time, id): валидатор расписания берет первый подходящий блок
func (r *Repository) FindByStaffAndDay(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	return r.list(ctx, "FindByStaffAndDay", squirrel.Eq{"staff_id": staffID, "day_of_week": int(day)})
}

// ListByStaff получает все блоки сотрудника на неделю
func (r *Repository) ListByStaff(ctx context.Context, staffID int64) ([]*domain.AvailabilityBlock, error) {
	return r.list(ctx, "ListByStaff", squirrel.Eq{"staff_id": staffID})
}

// Delete удаляет блок доступности
// Уже созданные записи не затрагиваются, новые и изменяемые будут валидироваться без него
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Sqlizer) ([]*domain.AvailabilityBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("availability_blocks").
		Where(where).
		OrderBy("day_of_week ASC", "start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	blocks := make([]*domain.AvailabilityBlock, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return blocks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlock(row rowScanner) (*domain.AvailabilityBlock, error) {
	var (
		block                domain.AvailabilityBlock
		day                  int
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&block.ID,
		&block.StaffID,
		&day,
		&block.StartTime,
		&block.EndTime,
		&block.MaxConcurrent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	block.DayOfWeek = time.Weekday(day)
	block.CreatedAt = createdAt.Time
	block.UpdatedAt = updatedAt.Time

	return &block, nil
}
