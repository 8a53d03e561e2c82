package availability

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type memoryBlocks struct {
	blocks map[int64]*domain.AvailabilityBlock
	nextID int64
	locked []int64
}

func (m *memoryBlocks) LockStaff(_ context.Context, staffID int64) error {
	m.locked = append(m.locked, staffID)
	return nil
}

func newMemoryBlocks(blocks ...*domain.AvailabilityBlock) *memoryBlocks {
	m := &memoryBlocks{blocks: map[int64]*domain.AvailabilityBlock{}}
	for _, b := range blocks {
		m.nextID++
		b.ID = m.nextID
		m.blocks[b.ID] = b
	}
	return m
}

func (m *memoryBlocks) Create(_ context.Context, block *domain.AvailabilityBlock) (*domain.AvailabilityBlock, error) {
	m.nextID++
	block.ID = m.nextID
	m.blocks[block.ID] = block
	return block, nil
}

func (m *memoryBlocks) GetByID(_ context.Context, id int64) (*domain.AvailabilityBlock, error) {
	b, ok := m.blocks[id]
	if !ok {
		return nil, availabilityRepo.ErrBlockNotFound
	}
	return b, nil
}

func (m *memoryBlocks) ListByStaff(_ context.Context, staffID int64) ([]*domain.AvailabilityBlock, error) {
	result := make([]*domain.AvailabilityBlock, 0)
	for _, b := range m.blocks {
		if b.StaffID == staffID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memoryBlocks) FindByStaffAndDay(ctx context.Context, staffID int64, day time.Weekday) ([]*domain.AvailabilityBlock, error) {
	all, _ := m.ListByStaff(ctx, staffID)
	result := make([]*domain.AvailabilityBlock, 0)
	for _, b := range all {
		if b.DayOfWeek == day {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *memoryBlocks) Delete(_ context.Context, id int64) error {
	if _, ok := m.blocks[id]; !ok {
		return availabilityRepo.ErrBlockNotFound
	}
	delete(m.blocks, id)
	return nil
}

type staffDirectory map[int64]*domain.Staff

func (d staffDirectory) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	s, ok := d[id]
	if !ok {
		return nil, directoryRepo.ErrStaffNotFound
	}
	return s, nil
}

type recordingInvalidator struct {
	calls []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, staffID int64, day time.Weekday) error {
	r.calls = append(r.calls, day.String())
	return nil
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type failingFinder struct{}

func (failingFinder) FindByStaffAndDay(context.Context, int64, time.Weekday) ([]*domain.AvailabilityBlock, error) {
	return nil, errors.New("connection refused")
}

func newTestService(repo *memoryBlocks, cache *recordingInvalidator) *Service {
	return NewService(repo, repo, staffDirectory{1: {ID: 1, Name: "Ana"}}, cache, passThroughTx{}, logger.NewNop())
}

func TestLookup_EmptyIsValid(t *testing.T) {
	svc := newTestService(newMemoryBlocks(), &recordingInvalidator{})

	blocks, err := svc.Lookup(context.Background(), 1, time.Monday)

	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestLookup_FiltersByDay(t *testing.T) {
	repo := newMemoryBlocks(
		&domain.AvailabilityBlock{StaffID: 1, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
		&domain.AvailabilityBlock{StaffID: 1, DayOfWeek: time.Tuesday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
	)
	svc := newTestService(repo, &recordingInvalidator{})

	blocks, err := svc.Lookup(context.Background(), 1, time.Tuesday)

	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, time.Tuesday, blocks[0].DayOfWeek)
}

func TestLookup_RepositoryError(t *testing.T) {
	svc := NewService(newMemoryBlocks(), failingFinder{}, staffDirectory{}, nil, passThroughTx{}, logger.NewNop())

	_, err := svc.Lookup(context.Background(), 1, time.Monday)

	assert.ErrorIs(t, err, ErrInternal)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateBlockRequest
		wantErr error
	}{
		{
			name: "valid block",
			req:  models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", MaxConcurrent: 2},
		},
		{
			name: "adjacent block is not an overlap",
			req:  models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00", MaxConcurrent: 1},
		},
		{
			name:    "overlapping block",
			req:     models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "11:00", EndTime: "14:00", MaxConcurrent: 1},
			wantErr: ErrOverlappingBlock,
		},
		{
			name: "same hours on another day",
			req:  models.CreateBlockRequest{StaffID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
		},
		{
			name:    "unknown staff",
			req:     models.CreateBlockRequest{StaffID: 9, DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", MaxConcurrent: 1},
			wantErr: ErrStaffNotFound,
		},
		{
			name:    "end before start",
			req:     models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "17:00", EndTime: "13:00", MaxConcurrent: 1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero capacity",
			req:     models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", MaxConcurrent: 0},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad weekday",
			req:     models.CreateBlockRequest{StaffID: 1, DayOfWeek: 7, StartTime: "13:00", EndTime: "17:00", MaxConcurrent: 1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "bad time format",
			req:     models.CreateBlockRequest{StaffID: 1, DayOfWeek: 1, StartTime: "1pm", EndTime: "17:00", MaxConcurrent: 1},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryBlocks(&domain.AvailabilityBlock{
				StaffID: 1, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1,
			})
			cache := &recordingInvalidator{}
			svc := newTestService(repo, cache)

			resp, err := svc.Create(context.Background(), &tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, cache.calls)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, resp.ID)
			assert.Equal(t, tt.req.StartTime, resp.StartTime)
			assert.Equal(t, []string{time.Weekday(tt.req.DayOfWeek).String()}, cache.calls)
		})
	}
}

func TestDelete(t *testing.T) {
	repo := newMemoryBlocks(&domain.AvailabilityBlock{
		StaffID: 1, DayOfWeek: time.Friday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1,
	})
	cache := &recordingInvalidator{}
	svc := newTestService(repo, cache)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []string{"Friday"}, cache.calls)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1), ErrBlockNotFound)
}

func TestListByStaff(t *testing.T) {
	repo := newMemoryBlocks(
		&domain.AvailabilityBlock{StaffID: 1, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
		&domain.AvailabilityBlock{StaffID: 2, DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "12:00", MaxConcurrent: 1},
	)
	svc := newTestService(repo, &recordingInvalidator{})

	resp, err := svc.ListByStaff(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "Monday", resp.Blocks[0].DayName)

	_, err = svc.ListByStaff(context.Background(), 5)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}
