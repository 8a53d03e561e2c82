package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []*Message
	at     []time.Time
	failOn map[string]bool
	done   chan struct{}
}

func newRecordingSender(expected int) *recordingSender {
	return &recordingSender{failOn: map[string]bool{}, done: make(chan struct{}, expected)}
}

func (s *recordingSender) Send(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.done <- struct{}{}
	}()
	if s.failOn[msg.ID] {
		return errors.New("provider unavailable")
	}
	s.sent = append(s.sent, msg)
	s.at = append(s.at, time.Now())
	return nil
}

func (s *recordingSender) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

type countingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *countingMetrics) ObserveNotification(_, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result]++
}

func (m *countingMetrics) SetNotificationQueue(int) {}

func (m *countingMetrics) count(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[result]
}

func message(id string) *Message {
	return &Message{ID: id, Kind: KindAppointmentCreated, Recipient: Recipient{Role: RoleStaff, ID: 1}}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	sender := newRecordingSender(3)
	d := NewDispatcher(sender, Config{QueueSize: 10}, nil, logger.NewNop())

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, d.Enqueue(message(id)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	sender.wait(t, 3)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	ids := make([]string, 0, len(sender.sent))
	for _, m := range sender.sent {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	metrics := &countingMetrics{results: map[string]int{}}
	d := NewDispatcher(newRecordingSender(0), Config{QueueSize: 1}, metrics, logger.NewNop())

	assert.True(t, d.Enqueue(message("a")))
	assert.False(t, d.Enqueue(message("b")))
	assert.Equal(t, 1, d.Pending())
	assert.Equal(t, 1, metrics.count(resultDropped))
}

func TestDispatcher_FailureDoesNotStopWorker(t *testing.T) {
	sender := newRecordingSender(2)
	sender.failOn["a"] = true
	metrics := &countingMetrics{results: map[string]int{}}
	d := NewDispatcher(sender, Config{QueueSize: 10}, metrics, logger.NewNop())

	d.Enqueue(message("a"))
	d.Enqueue(message("b"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	sender.wait(t, 2)

	sender.mu.Lock()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "b", sender.sent[0].ID)
	sender.mu.Unlock()

	assert.Eventually(t, func() bool {
		return metrics.count(resultFailed) == 1 && metrics.count(resultSent) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_PacesSends(t *testing.T) {
	const interval = 50 * time.Millisecond
	sender := newRecordingSender(3)
	d := NewDispatcher(sender, Config{QueueSize: 10, Interval: interval, Burst: 1}, nil, logger.NewNop())

	for _, id := range []string{"a", "b", "c"} {
		d.Enqueue(message(id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	sender.wait(t, 3)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.at, 3)
	assert.GreaterOrEqual(t, sender.at[2].Sub(sender.at[0]), 2*interval-10*time.Millisecond)
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(newRecordingSender(0), Config{QueueSize: 1}, nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
