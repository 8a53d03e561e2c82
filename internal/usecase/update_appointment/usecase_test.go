package update_appointment

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type memoryStore struct {
	mu           sync.Mutex
	appointments map[int64]*domain.Appointment
	locked       []int64
	updates      int
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *memoryStore) LockStaff(_ context.Context, staffIDs ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = append(s.locked, staffIDs...)
	return nil
}

func (s *memoryStore) Update(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[appt.ID]; !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *appt
	copied.UpdatedAt = time.Now()
	s.appointments[appt.ID] = &copied
	s.updates++
	result := copied
	return &result, nil
}

func (s *memoryStore) CountOverlapping(
	_ context.Context,
	staffID int64,
	start, end time.Time,
	statuses []domain.AppointmentStatus,
	excludeID *int64,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.appointments {
		if a.StaffID != staffID || (excludeID != nil && a.ID == *excludeID) {
			continue
		}
		active := false
		for _, st := range statuses {
			active = active || a.Status == st
		}
		if active && a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

type directory struct{}

func (directory) GetClient(_ context.Context, id int64) (*domain.Client, error) {
	if id > 2 {
		return nil, directoryRepo.ErrClientNotFound
	}
	return &domain.Client{ID: id, Name: "Maria"}, nil
}

func (directory) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	if id != 7 && id != 8 {
		return nil, directoryRepo.ErrStaffNotFound
	}
	return &domain.Staff{ID: id, Name: "Laura"}, nil
}

func (directory) GetTreatment(_ context.Context, id int64) (*domain.Treatment, error) {
	if id != 3 {
		return nil, directoryRepo.ErrTreatmentNotFound
	}
	return &domain.Treatment{ID: 3, Name: "Facial", DurationMinutes: 60, Price: 80}, nil
}

type catalog struct {
	blocks []*domain.AvailabilityBlock
}

func (c *catalog) Lookup(_ context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	result := make([]*domain.AvailabilityBlock, 0)
	for _, b := range c.blocks {
		if b.StaffID == staffID && b.DayOfWeek == day {
			result = append(result, b)
		}
	}
	return result, nil
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type sentNotification struct {
	kind notifications.Kind
	role notifications.Role
}

type recordingNotifier struct {
	sent []sentNotification
}

func (n *recordingNotifier) AppointmentConfirmed(_ *domain.Appointment, role notifications.Role) {
	n.sent = append(n.sent, sentNotification{notifications.KindAppointmentConfirmed, role})
}

func (n *recordingNotifier) AppointmentUpdated(*domain.Appointment) {
	n.sent = append(n.sent, sentNotification{notifications.KindAppointmentUpdated, notifications.RoleStaff})
}

type noopMetrics struct{}

func (noopMetrics) ObserveAppointment(string, string) {}

// mondayUTC 2024-01-01 - понедельник, Богота UTC-5
func mondayUTC(hour, minute int) time.Time {
	return time.Date(2024, time.January, 1, hour+5, minute, 0, 0, time.UTC)
}

type fixture struct {
	uc       *UseCase
	store    *memoryStore
	notifier *recordingNotifier
}

// newFixture: блок понедельника 09:00-12:00 у сотрудников 7 и 8,
// запись id=1 у сотрудника 7 на 09:00-10:00 в статусе status
func newFixture(t *testing.T, capacity int, status domain.AppointmentStatus) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	store := &memoryStore{appointments: map[int64]*domain.Appointment{
		1: {
			ID: 1, ClientID: 1, StaffID: 7, TreatmentID: 3,
			StartTime: mondayUTC(9, 0), EndTime: mondayUTC(10, 0),
			Status: status, PaymentStatus: domain.PaymentPending, Price: 80,
		},
	}}
	cat := &catalog{blocks: []*domain.AvailabilityBlock{
		{ID: 1, StaffID: 7, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: capacity},
		{ID: 2, StaffID: 8, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: capacity},
	}}
	validator := scheduling.NewValidator(cat, scheduling.NewConflictCounter(store), scheduling.NewClock(loc), logger.NewNop())

	f := &fixture{store: store, notifier: &recordingNotifier{}}
	f.uc = NewUseCase(store, directory{}, directory{}, directory{}, validator, passThroughTx{}, f.notifier, noopMetrics{}, logger.NewNop())
	return f
}

func (f *fixture) add(id, staffID int64, start, end time.Time, status domain.AppointmentStatus) {
	f.store.appointments[id] = &domain.Appointment{
		ID: id, ClientID: 2, StaffID: staffID, TreatmentID: 3,
		StartTime: start, EndTime: end, Status: status, PaymentStatus: domain.PaymentPending,
	}
}

func TestExecute_NotesOnlyDoesNotConflictWithItself(t *testing.T) {
	f := newFixture(t, 1, domain.StatusConfirmed)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: 1, Notes: ptr.Ptr("bring towel")})

	require.NoError(t, err)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "bring towel", *resp.Notes)
	assert.Equal(t, "Facial", resp.Treatment.Name)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, 1, f.store.updates)
}

func TestExecute_CompletedRequiresPayment(t *testing.T) {
	f := newFixture(t, 1, domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{ID: 1, Status: ptr.Ptr(domain.StatusCompleted)})
	assert.ErrorIs(t, err, domain.ErrCompletedRequiresPayment)

	_, err = f.uc.Execute(context.Background(), &Request{
		ID:            1,
		Status:        ptr.Ptr(domain.StatusCompleted),
		PaymentStatus: ptr.Ptr(domain.PaymentPending),
		Notes:         ptr.Ptr("done"),
	})
	assert.ErrorIs(t, err, domain.ErrCompletedRequiresPayment)
	assert.Zero(t, f.store.updates)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ID:            1,
		Status:        ptr.Ptr(domain.StatusCompleted),
		PaymentStatus: ptr.Ptr(domain.PaymentPaid),
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, []sentNotification{{notifications.KindAppointmentUpdated, notifications.RoleStaff}}, f.notifier.sent)
}

func TestExecute_PaymentOnlyBlocksCompletedAppointment(t *testing.T) {
	f := newFixture(t, 1, domain.StatusCompleted)
	f.store.appointments[1].PaymentStatus = domain.PaymentPaid

	_, err := f.uc.Execute(context.Background(), &Request{ID: 1, PaymentStatus: ptr.Ptr(domain.PaymentPending)})

	assert.ErrorIs(t, err, domain.ErrCompletedRequiresPayment)
}

func TestExecute_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from domain.AppointmentStatus
		to   domain.AppointmentStatus
	}{
		{from: domain.StatusCancelled, to: domain.StatusConfirmed},
		{from: domain.StatusCancelled, to: domain.StatusPending},
		{from: domain.StatusConfirmed, to: domain.StatusPending},
		{from: domain.StatusPending, to: domain.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t, 1, tt.from)

			_, err := f.uc.Execute(context.Background(), &Request{
				ID:            1,
				Status:        ptr.Ptr(tt.to),
				PaymentStatus: ptr.Ptr(domain.PaymentPaid),
			})

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

func TestExecute_FreshConfirmationNotifiesClientThenStaff(t *testing.T) {
	f := newFixture(t, 1, domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ID: 1, Status: ptr.Ptr(domain.StatusConfirmed)})

	require.NoError(t, err)
	assert.Equal(t, []sentNotification{
		{notifications.KindAppointmentConfirmed, notifications.RoleClient},
		{notifications.KindAppointmentConfirmed, notifications.RoleStaff},
	}, f.notifier.sent)
}

func TestExecute_ConfirmationWithRescheduleAlsoNotifiesUpdate(t *testing.T) {
	f := newFixture(t, 1, domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{
		ID:        1,
		Status:    ptr.Ptr(domain.StatusConfirmed),
		StartTime: ptr.Ptr(mondayUTC(10, 0)),
		EndTime:   ptr.Ptr(mondayUTC(11, 0)),
	})

	require.NoError(t, err)
	assert.Equal(t, []sentNotification{
		{notifications.KindAppointmentConfirmed, notifications.RoleClient},
		{notifications.KindAppointmentConfirmed, notifications.RoleStaff},
		{notifications.KindAppointmentUpdated, notifications.RoleStaff},
	}, f.notifier.sent)
}

func TestExecute_RescheduleIntoConflict(t *testing.T) {
	f := newFixture(t, 1, domain.StatusConfirmed)
	f.add(2, 7, mondayUTC(10, 0), mondayUTC(11, 0), domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{
		ID:        1,
		StartTime: ptr.Ptr(mondayUTC(10, 30)),
		EndTime:   ptr.Ptr(mondayUTC(11, 30)),
	})
	assert.ErrorIs(t, err, scheduling.ErrCapacityExceeded)

	_, err = f.uc.Execute(context.Background(), &Request{ID: 1, EndTime: ptr.Ptr(mondayUTC(12, 30))})
	assert.ErrorIs(t, err, scheduling.ErrOutsideAvailability)

	_, err = f.uc.Execute(context.Background(), &Request{ID: 1, EndTime: ptr.Ptr(mondayUTC(9, 0))})
	assert.ErrorIs(t, err, scheduling.ErrNonPositiveDuration)

	assert.Zero(t, f.store.updates)
	assert.Empty(t, f.notifier.sent)
}

func TestExecute_MoveToAnotherStaffLocksBoth(t *testing.T) {
	f := newFixture(t, 1, domain.StatusConfirmed)
	f.add(2, 7, mondayUTC(9, 0), mondayUTC(10, 0), domain.StatusCancelled)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: 1, StaffID: ptr.Ptr(int64(8))})

	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.StaffID)
	assert.Equal(t, []int64{7, 8}, f.store.locked)
	assert.Equal(t, []sentNotification{{notifications.KindAppointmentUpdated, notifications.RoleStaff}}, f.notifier.sent)
}

func TestExecute_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "appointment", req: &Request{ID: 99, Notes: ptr.Ptr("x")}, wantErr: ErrAppointmentNotFound},
		{name: "client", req: &Request{ID: 1, ClientID: ptr.Ptr(int64(50))}, wantErr: ErrClientNotFound},
		{name: "staff", req: &Request{ID: 1, StaffID: ptr.Ptr(int64(50))}, wantErr: ErrStaffNotFound},
		{name: "treatment", req: &Request{ID: 1, TreatmentID: ptr.Ptr(int64(50))}, wantErr: ErrTreatmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1, domain.StatusPending)

			_, err := f.uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.store.updates)
		})
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t, 1, domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ID: 1, Price: ptr.Ptr(-5.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ID: 0, Notes: ptr.Ptr("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_CancelNotifiesStaff(t *testing.T) {
	f := newFixture(t, 1, domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{ID: 1, Status: ptr.Ptr(domain.StatusCancelled)})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, []sentNotification{{notifications.KindAppointmentUpdated, notifications.RoleStaff}}, f.notifier.sent)
}
