// Package pgtest поднимает изолированную схему PostgreSQL для интеграционных тестов.
// Тесты пропускаются, если не задана переменная окружения APPOINTMENTS_TEST_DSN.
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/migrations"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

// DSNEnv переменная окружения с DSN тестовой базы
const DSNEnv = "APPOINTMENTS_TEST_DSN"

const maxOpenConns = 20

// Open создает отдельную схему, накатывает миграции и возвращает обертку над пулом
// Схема удаляется по завершении теста
func Open(t testing.TB) *dbmetrics.DB {
	t.Helper()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set, skipping PostgreSQL test", DSNEnv)
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		require.NoError(t, err)
		dsn = converted
	}

	admin, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec("CREATE SCHEMA " + schema)
	require.NoError(t, err)

	// search_path передается серверу как параметр соединения для всех соединений пула
	db, err := sql.Open("postgres", fmt.Sprintf("%s search_path=%s", dsn, schema))
	require.NoError(t, err)
	db.SetMaxOpenConns(maxOpenConns)

	t.Cleanup(func() {
		_ = db.Close()
		_, _ = admin.Exec("DROP SCHEMA " + schema + " CASCADE")
		_ = admin.Close()
	})

	ddl, err := migrations.FS.ReadFile(migrations.InitUp)
	require.NoError(t, err)
	_, err = db.Exec(string(ddl))
	require.NoError(t, err)

	return dbmetrics.Wrap(db, nil)
}

// InsertClient добавляет клиента и возвращает его ID
func InsertClient(t testing.TB, db dbmetrics.DBExecutor, name string) int64 {
	t.Helper()
	return insert(t, db, "INSERT INTO clients (name, phone) VALUES ($1, $2) RETURNING id", name, "+570000000")
}

// InsertStaff добавляет сотрудника и возвращает его ID
func InsertStaff(t testing.TB, db dbmetrics.DBExecutor, name string) int64 {
	t.Helper()
	return insert(t, db, "INSERT INTO staff (name, email) VALUES ($1, $2) RETURNING id", name, "staff@example.com")
}

// InsertTreatment добавляет услугу и возвращает её ID
func InsertTreatment(t testing.TB, db dbmetrics.DBExecutor, name string, durationMinutes int, price float64) int64 {
	t.Helper()
	return insert(t, db,
		"INSERT INTO treatments (name, duration_minutes, price) VALUES ($1, $2, $3) RETURNING id",
		name, durationMinutes, price)
}

// InsertBlock добавляет недельный блок доступности и возвращает его ID
func InsertBlock(t testing.TB, db dbmetrics.DBExecutor, staffID int64, day int, start, end string, maxConcurrent int) int64 {
	t.Helper()
	return insert(t, db,
		`INSERT INTO availability_blocks (staff_id, day_of_week, start_time, end_time, max_concurrent)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		staffID, day, start, end, maxConcurrent)
}

func insert(t testing.TB, db dbmetrics.DBExecutor, query string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&id))
	return id
}
