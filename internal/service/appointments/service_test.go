package appointments

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type memoryAppointments struct {
	items     map[int64]*domain.Appointment
	lastQuery domain.AppointmentListQuery
}

func (m *memoryAppointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memoryAppointments) GetByClientID(_ context.Context, clientID int64) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	for _, a := range m.items {
		if a.ClientID == clientID {
			copied := *a
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (m *memoryAppointments) List(_ context.Context, q domain.AppointmentListQuery) ([]*domain.Appointment, int, error) {
	m.lastQuery = q
	result := make([]*domain.Appointment, 0)
	for _, a := range m.items {
		if q.StaffID != nil && a.StaffID != *q.StaffID {
			continue
		}
		copied := *a
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memoryAppointments) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryDirectory struct {
	batchCalls int
}

func (d *memoryDirectory) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	if id != 1 {
		return nil, directoryRepo.ErrClientNotFound
	}
	return &domain.Client{ID: 1, Name: "Maria"}, nil
}

func (d *memoryDirectory) GetClientsByIDs(_ context.Context, ids []int64) (map[int64]*domain.Client, error) {
	d.batchCalls++
	return map[int64]*domain.Client{1: {ID: 1, Name: "Maria"}}, nil
}

func (d *memoryDirectory) GetStaffByIDs(_ context.Context, ids []int64) (map[int64]*domain.Staff, error) {
	d.batchCalls++
	return map[int64]*domain.Staff{2: {ID: 2, Name: "Laura"}, 3: {ID: 3, Name: "Sofia"}}, nil
}

func (d *memoryDirectory) GetTreatmentsByIDs(_ context.Context, ids []int64) (map[int64]*domain.Treatment, error) {
	d.batchCalls++
	return map[int64]*domain.Treatment{5: {ID: 5, Name: "Facial", DurationMinutes: 60, Price: 80}}, nil
}

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) ObserveAppointment(operation, outcome string) {
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

func fixture() (*Service, *memoryAppointments, *memoryDirectory, *outcomeRecorder) {
	start := time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)
	repo := &memoryAppointments{items: map[int64]*domain.Appointment{
		1: {ID: 1, ClientID: 1, StaffID: 2, TreatmentID: 5, StartTime: start, EndTime: start.Add(time.Hour),
			Status: domain.StatusPending, PaymentStatus: domain.PaymentPending, Price: 80},
		2: {ID: 2, ClientID: 1, StaffID: 3, TreatmentID: 5, StartTime: start.AddDate(0, 0, 7), EndTime: start.AddDate(0, 0, 7).Add(time.Hour),
			Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPaid, Price: 80},
	}}
	dir := &memoryDirectory{}
	rec := &outcomeRecorder{}
	return NewService(repo, dir, rec, logger.NewNop()), repo, dir, rec
}

func TestFindOne(t *testing.T) {
	svc, _, _, _ := fixture()

	resp, err := svc.FindOne(context.Background(), 1, domain.IncludeAll)
	require.NoError(t, err)
	require.NotNil(t, resp.Client)
	require.NotNil(t, resp.Staff)
	require.NotNil(t, resp.Treatment)
	assert.Equal(t, "Maria", resp.Client.Name)
	assert.Equal(t, "Laura", resp.Staff.Name)
	assert.Equal(t, "Facial", resp.Treatment.Name)

	_, err = svc.FindOne(context.Background(), 99, domain.IncludeAll)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestFindOne_IncludeSubset(t *testing.T) {
	svc, _, dir, _ := fixture()

	resp, err := svc.FindOne(context.Background(), 1, domain.IncludeStaff)

	require.NoError(t, err)
	assert.Nil(t, resp.Client)
	assert.Nil(t, resp.Treatment)
	require.NotNil(t, resp.Staff)
	assert.Equal(t, 1, dir.batchCalls)
}

func TestList_DefaultsAndNoHydration(t *testing.T) {
	svc, repo, dir, _ := fixture()

	resp, err := svc.List(context.Background(), &models.ListRequest{})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, domain.SortByStartTime, repo.lastQuery.SortBy)
	assert.Equal(t, domain.SortDesc, repo.lastQuery.SortOrder)
	assert.Zero(t, dir.batchCalls)
	assert.Nil(t, resp.Appointments[0].Client)
}

func TestList_BatchedHydration(t *testing.T) {
	svc, _, dir, _ := fixture()

	resp, err := svc.List(context.Background(), &models.ListRequest{Include: domain.IncludeAll, Limit: 500})

	require.NoError(t, err)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 3, dir.batchCalls)
	assert.Equal(t, "Sofia", resp.Appointments[1].Staff.Name)
}

func TestList_InvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		req  models.ListRequest
	}{
		{name: "unknown status", req: models.ListRequest{Status: ptr.Ptr("done")}},
		{name: "unknown payment", req: models.ListRequest{PaymentStatus: ptr.Ptr("refunded")}},
		{name: "unknown sort", req: models.ListRequest{SortBy: ptr.Ptr("notes")}},
		{name: "unknown order", req: models.ListRequest{SortOrder: ptr.Ptr("up")}},
		{name: "inverted range", req: models.ListRequest{
			From: ptr.Ptr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			To:   ptr.Ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := fixture()
			_, err := svc.List(context.Background(), &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFindByClient(t *testing.T) {
	svc, _, _, _ := fixture()

	items, err := svc.FindByClient(context.Background(), 1, domain.IncludeNone)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)

	_, err = svc.FindByClient(context.Background(), 7, domain.IncludeNone)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestRemove(t *testing.T) {
	svc, repo, _, rec := fixture()

	require.NoError(t, svc.Remove(context.Background(), 1))
	assert.NotContains(t, repo.items, int64(1))

	assert.ErrorIs(t, svc.Remove(context.Background(), 1), ErrAppointmentNotFound)
	assert.Equal(t, []string{"remove:ok", "remove:not_found"}, rec.outcomes)
}
