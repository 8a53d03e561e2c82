package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий справочников: клиенты, сотрудники, услуги
// Справочники ведутся другими частями системы, здесь только чтение
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetClient получает клиента по ID
func (r *Repository) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	clients, err := r.GetClientsByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	client, ok := clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// GetStaff получает сотрудника по ID
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	staff, err := r.GetStaffByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	member, ok := staff[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	return member, nil
}

// GetTreatment получает услугу по ID
func (r *Repository) GetTreatment(ctx context.Context, id int64) (*domain.Treatment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price").
		From("treatments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTreatment - build select query: %v", ErrBuildQuery, err)
	}

	var treatment domain.Treatment
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&treatment.ID,
		&treatment.Name,
		&treatment.DurationMinutes,
		&treatment.Price,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTreatmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTreatment - scan treatment: %v", ErrScanRow, err)
	}

	return &treatment, nil
}

// GetClientsByIDs получает клиентов пачкой, отсутствующие ID просто не попадают в результат
func (r *Repository) GetClientsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Client, error) {
	result := make(map[int64]*domain.Client, len(ids))
	err := r.selectPeople(ctx, "clients", ids, func(id int64, name string, email, phone *string) {
		result[id] = &domain.Client{ID: id, Name: name, Email: email, Phone: phone}
	})
	if err != nil {
		return nil, fmt.Errorf("GetClientsByIDs: %w", err)
	}
	return result, nil
}

// GetStaffByIDs получает сотрудников пачкой
func (r *Repository) GetStaffByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Staff, error) {
	result := make(map[int64]*domain.Staff, len(ids))
	err := r.selectPeople(ctx, "staff", ids, func(id int64, name string, email, phone *string) {
		result[id] = &domain.Staff{ID: id, Name: name, Email: email, Phone: phone}
	})
	if err != nil {
		return nil, fmt.Errorf("GetStaffByIDs: %w", err)
	}
	return result, nil
}

// GetTreatmentsByIDs получает услуги пачкой
func (r *Repository) GetTreatmentsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Treatment, error) {
	result := make(map[int64]*domain.Treatment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price").
		From("treatments").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTreatmentsByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTreatmentsByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.DurationMinutes, &t.Price); err != nil {
			return nil, fmt.Errorf("%w: GetTreatmentsByIDs - scan row: %v", ErrScanRow, err)
		}
		result[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTreatmentsByIDs - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// selectPeople общая выборка для таблиц clients и staff (одинаковый набор колонок)
func (r *Repository) selectPeople(
	ctx context.Context,
	table string,
	ids []int64,
	collect func(id int64, name string, email, phone *string),
) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "email", "phone").
		From(table).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build select query on %s: %v", ErrBuildQuery, table, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: query %s: %v", ErrExecQuery, table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id           int64
			name         string
			email, phone sql.NullString
		)
		if err := rows.Scan(&id, &name, &email, &phone); err != nil {
			return fmt.Errorf("%w: scan %s row: %v", ErrScanRow, table, err)
		}
		collect(id, name, nullStringPtr(email), nullStringPtr(phone))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s rows error: %v", ErrScanRow, table, err)
	}
	return nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
