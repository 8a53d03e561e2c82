package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type staticCatalog struct {
	blocks []*domain.AvailabilityBlock
	err    error
}

func (c *staticCatalog) Lookup(_ context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	if c.err != nil {
		return nil, c.err
	}
	result := make([]*domain.AvailabilityBlock, 0)
	for _, b := range c.blocks {
		if b.StaffID == staffID && b.DayOfWeek == day {
			result = append(result, b)
		}
	}
	return result, nil
}

// bookedSchedule хранит записи в памяти и считает пересечения так же, как репозиторий
type bookedSchedule struct {
	appointments []*domain.Appointment
}

func (s *bookedSchedule) CountOverlapping(
	_ context.Context,
	staffID int64,
	start, end time.Time,
	statuses []domain.AppointmentStatus,
	excludeID *int64,
) (int, error) {
	count := 0
	for _, a := range s.appointments {
		if a.StaffID != staffID || (excludeID != nil && a.ID == *excludeID) {
			continue
		}
		if !containsStatus(statuses, a.Status) {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

func (s *bookedSchedule) book(staffID int64, start, end time.Time, status domain.AppointmentStatus) int64 {
	id := int64(len(s.appointments) + 1)
	s.appointments = append(s.appointments, &domain.Appointment{
		ID: id, StaffID: staffID, StartTime: start, EndTime: end, Status: status,
	})
	return id
}

func containsStatus(statuses []domain.AppointmentStatus, s domain.AppointmentStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

var bogota = mustLoad("America/Bogota")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// monday 2024-01-01 - понедельник
func monday(hour, minute int) time.Time {
	return time.Date(2024, time.January, 1, hour, minute, 0, 0, bogota)
}

func mondayBlock(capacity int) *domain.AvailabilityBlock {
	return &domain.AvailabilityBlock{
		ID: 1, StaffID: 7, DayOfWeek: time.Monday,
		StartTime: "09:00", EndTime: "12:00", MaxConcurrent: capacity,
	}
}

func newTestValidator(catalog Catalog, schedule *bookedSchedule) *Validator {
	return NewValidator(catalog, NewConflictCounter(schedule), NewClock(bogota), logger.NewNop())
}

// bookIfValid повторяет поток создания записи: валидация, затем сохранение
func bookIfValid(t *testing.T, v *Validator, s *bookedSchedule, start, end time.Time) error {
	t.Helper()
	_, err := v.Validate(context.Background(), 7, start, end, nil)
	if err == nil {
		s.book(7, start, end, domain.StatusPending)
	}
	return err
}

func TestValidate_ExclusiveBlock(t *testing.T) {
	schedule := &bookedSchedule{}
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, schedule)

	require.NoError(t, bookIfValid(t, v, schedule, monday(9, 0), monday(10, 0)))

	err := bookIfValid(t, v, schedule, monday(9, 30), monday(10, 30))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.True(t, IsRejection(err))
}

func TestValidate_SharedBlock(t *testing.T) {
	schedule := &bookedSchedule{}
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(2)}}, schedule)

	require.NoError(t, bookIfValid(t, v, schedule, monday(9, 0), monday(10, 0)))
	require.NoError(t, bookIfValid(t, v, schedule, monday(9, 30), monday(10, 30)))

	err := bookIfValid(t, v, schedule, monday(9, 15), monday(9, 45))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, schedule.appointments, 2)
}

func TestValidate_OutsideAvailability(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
	}{
		{name: "before block", start: monday(8, 0), end: monday(9, 0)},
		{name: "starts before block", start: monday(8, 30), end: monday(9, 30)},
		{name: "ends after block", start: monday(11, 30), end: monday(12, 30)},
		{name: "other weekday", start: monday(9, 0).AddDate(0, 0, 1), end: monday(10, 0).AddDate(0, 0, 1)},
		{name: "crosses midnight", start: monday(23, 0), end: monday(23, 0).Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(5)}}, &bookedSchedule{})

			_, err := v.Validate(context.Background(), 7, tt.start, tt.end, nil)

			assert.ErrorIs(t, err, ErrOutsideAvailability)
		})
	}
}

func TestValidate_BlockBoundariesAreInclusive(t *testing.T) {
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, &bookedSchedule{})

	block, err := v.Validate(context.Background(), 7, monday(9, 0), monday(12, 0), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(1), block.ID)
}

func TestValidate_EmptyCatalogRejectsEverything(t *testing.T) {
	v := newTestValidator(&staticCatalog{}, &bookedSchedule{})

	for day := 0; day < 7; day++ {
		start := monday(10, 0).AddDate(0, 0, day)
		_, err := v.Validate(context.Background(), 7, start, start.Add(30*time.Minute), nil)
		assert.ErrorIs(t, err, ErrOutsideAvailability, "day offset %d", day)
	}
}

func TestValidate_NonPositiveDuration(t *testing.T) {
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, &bookedSchedule{})

	_, err := v.Validate(context.Background(), 7, monday(10, 0), monday(10, 0), nil)
	assert.ErrorIs(t, err, ErrNonPositiveDuration)

	_, err = v.Validate(context.Background(), 7, monday(10, 0), monday(9, 0), nil)
	assert.ErrorIs(t, err, ErrNonPositiveDuration)
	assert.Contains(t, err.Error(), "non-positive duration")
}

func TestValidate_InactiveAppointmentsDoNotCount(t *testing.T) {
	schedule := &bookedSchedule{}
	schedule.book(7, monday(9, 0), monday(10, 0), domain.StatusCancelled)
	schedule.book(7, monday(9, 0), monday(10, 0), domain.StatusCompleted)
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, schedule)

	_, err := v.Validate(context.Background(), 7, monday(9, 0), monday(10, 0), nil)

	assert.NoError(t, err)
}

func TestValidate_AdjacentAppointmentsDoNotOverlap(t *testing.T) {
	schedule := &bookedSchedule{}
	schedule.book(7, monday(9, 0), monday(10, 0), domain.StatusConfirmed)
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, schedule)

	_, err := v.Validate(context.Background(), 7, monday(10, 0), monday(11, 0), nil)

	assert.NoError(t, err)
}

func TestValidate_ExcludesItself(t *testing.T) {
	schedule := &bookedSchedule{}
	id := schedule.book(7, monday(9, 0), monday(10, 0), domain.StatusConfirmed)
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, schedule)

	_, err := v.Validate(context.Background(), 7, monday(9, 0), monday(10, 0), ptr.Ptr(id))
	assert.NoError(t, err)

	_, err = v.Validate(context.Background(), 7, monday(9, 0), monday(10, 0), nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestValidate_FirstMatchingBlockWins(t *testing.T) {
	schedule := &bookedSchedule{}
	schedule.book(7, monday(9, 0), monday(10, 0), domain.StatusPending)
	catalog := &staticCatalog{blocks: []*domain.AvailabilityBlock{
		{ID: 1, StaffID: 7, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
		{ID: 2, StaffID: 7, DayOfWeek: time.Monday, StartTime: "08:00", EndTime: "13:00", MaxConcurrent: 5},
	}}
	v := newTestValidator(catalog, schedule)

	_, err := v.Validate(context.Background(), 7, monday(9, 30), monday(10, 30), nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	block, err := v.Validate(context.Background(), 7, monday(8, 0), monday(8, 30), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.ID)
}

func TestValidate_UsesBusinessTimezone(t *testing.T) {
	v := newTestValidator(&staticCatalog{blocks: []*domain.AvailabilityBlock{mondayBlock(1)}}, &bookedSchedule{})

	// 14:00 UTC понедельника - 09:00 в Боготе
	start := time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)
	_, err := v.Validate(context.Background(), 7, start, start.Add(time.Hour), nil)
	assert.NoError(t, err)

	// 03:00 UTC вторника - 22:00 понедельника в Боготе
	late := time.Date(2024, time.January, 2, 3, 0, 0, 0, time.UTC)
	_, err = v.Validate(context.Background(), 7, late, late.Add(time.Hour), nil)
	assert.ErrorIs(t, err, ErrOutsideAvailability)
	assert.Contains(t, err.Error(), "Monday 22:00-23:00")
}

// Запись через полночь сверяется только с блоками дня начала и в них не помещается
func TestValidate_CrossMidnightUsesStartWeekday(t *testing.T) {
	catalog := &staticCatalog{blocks: []*domain.AvailabilityBlock{
		{ID: 1, StaffID: 7, DayOfWeek: time.Monday, StartTime: "22:00", EndTime: "23:59", MaxConcurrent: 1},
		{ID: 2, StaffID: 7, DayOfWeek: time.Tuesday, StartTime: "00:00", EndTime: "02:00", MaxConcurrent: 1},
	}}
	schedule := &bookedSchedule{}
	v := newTestValidator(catalog, schedule)

	_, err := v.Validate(context.Background(), 7, monday(23, 0), monday(23, 0).Add(90*time.Minute), nil)

	assert.ErrorIs(t, err, ErrOutsideAvailability)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "Monday 23:00-24:30")

	block, err := v.Validate(context.Background(), 7, monday(23, 0), monday(23, 59), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), block.ID)

	// Тот же интервал с началом во вторник попадает в блок вторника
	tuesday := monday(0, 0).AddDate(0, 0, 1)
	block, err = v.Validate(context.Background(), 7, tuesday, tuesday.Add(30*time.Minute), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.ID)
}

func TestValidate_CatalogError(t *testing.T) {
	v := newTestValidator(&staticCatalog{err: errors.New("db down")}, &bookedSchedule{})

	_, err := v.Validate(context.Background(), 7, monday(9, 0), monday(10, 0), nil)

	assert.ErrorIs(t, err, ErrInternal)
	assert.False(t, IsRejection(err))
}

func TestClock_Window(t *testing.T) {
	clock := NewClock(bogota)

	w := clock.Window(monday(9, 15), monday(10, 45))
	assert.Equal(t, time.Monday, w.Weekday)
	assert.Equal(t, 9*60+15, w.StartMinutes)
	assert.Equal(t, 10*60+45, w.EndMinutes)

	crossing := clock.Window(monday(23, 0), monday(23, 0).Add(90*time.Minute))
	assert.Equal(t, 24*60+30, crossing.EndMinutes)

	partial := clock.Window(monday(9, 0), monday(9, 59).Add(30*time.Second))
	assert.Equal(t, 10*60, partial.EndMinutes)
}
