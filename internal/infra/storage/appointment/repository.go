package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

var appointmentColumns = []string{
	"a.id",
	"a.client_id",
	"a.staff_id",
	"a.treatment_id",
	"a.start_time",
	"a.end_time",
	"a.status",
	"a.price",
	"a.payment_method",
	"a.payment_status",
	"a.notes",
	"a.created_at",
	"a.updated_at",
}

// sortColumns соответствие ключей сортировки колонкам запроса
var sortColumns = map[domain.AppointmentSortKey]string{
	domain.SortByID:         "a.id",
	domain.SortByStartTime:  "a.start_time",
	domain.SortByClientName: "c.name",
	domain.SortByStaffName:  "s.name",
	domain.SortByStatus:     "a.status",
	domain.SortByPrice:      "a.price",
}

// Repository репозиторий для работы с записями на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockStaff берет транзакционные advisory-блокировки на сотрудников
// Все создания и изменения записей одного сотрудника выполняются строго последовательно:
// подсчет пересечений и последующая запись видят согласованное состояние.
// Блокировки берутся в порядке возрастания ID, чтобы не было взаимных блокировок
// и освобождаются автоматически при завершении транзакции.
func (r *Repository) LockStaff(ctx context.Context, staffIDs ...int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := uniqueSorted(staffIDs)
	for _, id := range ids {
		if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", id); err != nil {
			return fmt.Errorf("%w: LockStaff - staff_id=%d: %v", mapPQError(err), id, err)
		}
	}

	return nil
}

// CountOverlapping считает записи сотрудника с указанными статусами,
// пересекающиеся с интервалом [start, end): existing.start < end AND existing.end > start
// excludeID исключает саму запись при её изменении
func (r *Repository) CountOverlapping(
	ctx context.Context,
	staffID int64,
	start, end time.Time,
	statuses []domain.AppointmentStatus,
	excludeID *int64,
) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"status": statusStrings}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - scan count: %v", mapPQError(err), err)
	}

	return count, nil
}

// ListOverlapping возвращает записи сотрудника с указанными статусами, пересекающиеся с [start, end)
// Используется для подсчета занятости множества слотов за один запрос
func (r *Repository) ListOverlapping(
	ctx context.Context,
	staffID int64,
	start, end time.Time,
	statuses []domain.AppointmentStatus,
) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments a").
		Where(squirrel.Eq{"a.staff_id": staffID}).
		Where(squirrel.Eq{"a.status": statusStrings}).
		Where(squirrel.Lt{"a.start_time": end}).
		Where(squirrel.Gt{"a.end_time": start}).
		OrderBy("a.start_time ASC", "a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Create создает новую запись
// Если в контексте передана активная транзакция (через context.Value), использует её
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"client_id",
			"staff_id",
			"treatment_id",
			"start_time",
			"end_time",
			"status",
			"price",
			"payment_method",
			"payment_status",
			"notes",
		).
		Values(
			appt.ClientID,
			appt.StaffID,
			appt.TreatmentID,
			appt.StartTime.UTC(),
			appt.EndTime.UTC(),
			string(appt.Status),
			appt.Price,
			appt.PaymentMethod,
			string(appt.PaymentStatus),
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&appt.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", mapPQError(err), err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// Update сохраняет изменяемые поля записи
func (r *Repository) Update(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("client_id", appt.ClientID).
		Set("staff_id", appt.StaffID).
		Set("treatment_id", appt.TreatmentID).
		Set("start_time", appt.StartTime.UTC()).
		Set("end_time", appt.EndTime.UTC()).
		Set("status", string(appt.Status)).
		Set("price", appt.Price).
		Set("payment_method", appt.PaymentMethod).
		Set("payment_status", string(appt.PaymentStatus)).
		Set("notes", appt.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": appt.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", mapPQError(err), err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments a").
		Where(squirrel.Eq{"a.id": id})

	// Внутри транзакции блокируем строку до конца изменения
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// GetByClientID получает все записи клиента, сначала новые
func (r *Repository) GetByClientID(ctx context.Context, clientID int64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments a").
		Where(squirrel.Eq{"a.client_id": clientID}).
		OrderBy("a.start_time DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// List получает страницу записей по фильтрам и общее количество подходящих записей
//
// Примеры использования:
//
//  1. Последние записи (по умолчанию startTime DESC, page=1, limit=10):
//     q := domain.AppointmentListQuery{}
//
//  2. Подтвержденные записи сотрудника за неделю:
//     status := domain.StatusConfirmed
//     q := domain.AppointmentListQuery{StaffID: &staffID, Status: &status, From: &monday, To: &nextMonday}
//
//  3. Поиск по имени клиента с сортировкой по цене:
//     q := domain.AppointmentListQuery{Search: ptr.Ptr("anna"), SortBy: domain.SortByPrice, SortOrder: domain.SortAsc}
func (r *Repository) List(ctx context.Context, q domain.AppointmentListQuery) ([]*domain.Appointment, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	q.Normalize()

	countQuery, countArgs, err := applyListFilters(joinRelations(psqlbuilder.Select("COUNT(*)")), q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: List - scan count: %v", ErrExecQuery, err)
	}

	if total == 0 {
		return []*domain.Appointment{}, 0, nil
	}

	orderColumn := sortColumns[q.SortBy]
	order := string(q.SortOrder)

	query, args, err := applyListFilters(joinRelations(psqlbuilder.Select(appointmentColumns...)), q).
		OrderBy(orderColumn+" "+order, "a.id "+order).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	items, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Delete удаляет запись (физическое удаление)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("appointments").
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
		return ErrAppointmentNotFound
	}

	return nil
}

// joinRelations присоединяет справочники, нужные для поиска и сортировки по именам
func joinRelations(sb squirrel.SelectBuilder) squirrel.SelectBuilder {
	return sb.From("appointments a").
		Join("clients c ON c.id = a.client_id").
		Join("staff s ON s.id = a.staff_id").
		LeftJoin("treatments t ON t.id = a.treatment_id")
}

func applyListFilters(sb squirrel.SelectBuilder, q domain.AppointmentListQuery) squirrel.SelectBuilder {
	if q.ClientID != nil {
		sb = sb.Where(squirrel.Eq{"a.client_id": *q.ClientID})
	}
	if q.StaffID != nil {
		sb = sb.Where(squirrel.Eq{"a.staff_id": *q.StaffID})
	}
	if q.Status != nil {
		sb = sb.Where(squirrel.Eq{"a.status": string(*q.Status)})
	}
	if q.PaymentStatus != nil {
		sb = sb.Where(squirrel.Eq{"a.payment_status": string(*q.PaymentStatus)})
	}
	if q.From != nil {
		sb = sb.Where(squirrel.GtOrEq{"a.start_time": q.From.UTC()})
	}
	if q.To != nil {
		sb = sb.Where(squirrel.Lt{"a.start_time": q.To.UTC()})
	}
	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(*q.Search)) + "%"
		sb = sb.Where(squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"s.name": pattern},
			squirrel.ILike{"t.name": pattern},
			squirrel.ILike{"a.notes": pattern},
		})
	}
	return sb
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt                 domain.Appointment
		status, payment      string
		paymentMethod, notes sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.StaffID,
		&appt.TreatmentID,
		&appt.StartTime,
		&appt.EndTime,
		&status,
		&appt.Price,
		&paymentMethod,
		&payment,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Status = domain.AppointmentStatus(status)
	appt.PaymentStatus = domain.PaymentStatus(payment)
	if paymentMethod.Valid {
		appt.PaymentMethod = &paymentMethod.String
	}
	if notes.Valid {
		appt.Notes = &notes.String
	}
	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// mapPQError сопоставляет ошибку PostgreSQL с ошибкой репозитория
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ErrExecQuery
	}

	switch pqErr.Code {
	case pgForeignKeyViolation:
		return ErrReferenceNotFound
	case pgCheckViolation:
		return ErrConstraintViolation
	case pgSerializationFail, pgDeadlockDetected:
		return ErrSerialization
	default:
		return ErrExecQuery
	}
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
