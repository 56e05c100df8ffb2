package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	name    string
	mu      sync.Mutex
	events  []models.RosterEvent
	handle  func(ctx context.Context) error
}

func (f *fakeListener) Name() string { return f.name }

func (f *fakeListener) Handle(ctx context.Context, event models.RosterEvent) error {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
	if f.handle != nil {
		return f.handle(ctx)
	}
	return nil
}

func (f *fakeListener) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testEvent() models.RosterEvent {
	return models.RosterEvent{
		ID:               "evt-1",
		Type:             models.RosterEventSignup,
		Activity:         "Chess Club",
		Email:            "newstudent@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
		OccurredAt:       time.Date(2024, 9, 2, 15, 30, 0, 0, time.UTC),
	}
}

func TestDispatcher_DeliversToAllListenersInOrder(t *testing.T) {
	d := NewDispatcher(BreakerSettings{}, logger.NewTestLogger(t))

	var order []string
	var mu sync.Mutex
	mk := func(name string) *fakeListener {
		return &fakeListener{name: name, handle: func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}}
	}
	a, b := mk("dispatch-order-a"), mk("dispatch-order-b")
	d.Register(a, time.Second)
	d.Register(b, time.Second)

	d.Publish(context.Background(), testEvent())

	assert.Equal(t, []string{"dispatch-order-a", "dispatch-order-b"}, order)
	assert.Equal(t, []string{"dispatch-order-a", "dispatch-order-b"}, d.Names())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ListenerDeliveriesTotal.WithLabelValues("dispatch-order-a", metrics.ResultSuccess)))
}

func TestDispatcher_FailureDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher(BreakerSettings{}, logger.NewTestLogger(t))

	failing := &fakeListener{name: "dispatch-failing", handle: func(context.Context) error {
		return errors.New("connection refused")
	}}
	panicking := &fakeListener{name: "dispatch-panicking", handle: func(context.Context) error {
		panic("boom")
	}}
	healthy := &fakeListener{name: "dispatch-healthy"}

	d.Register(failing, time.Second)
	d.Register(panicking, time.Second)
	d.Register(healthy, time.Second)

	assert.NotPanics(t, func() { d.Publish(context.Background(), testEvent()) })

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ListenerDeliveriesTotal.WithLabelValues("dispatch-failing", metrics.ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ListenerDeliveriesTotal.WithLabelValues("dispatch-panicking", metrics.ResultFailed)))
}

func TestDispatcher_TimeoutBoundsDelivery(t *testing.T) {
	d := NewDispatcher(BreakerSettings{}, logger.NewTestLogger(t))

	slow := &fakeListener{name: "dispatch-slow", handle: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	d.Register(slow, 20*time.Millisecond)

	start := time.Now()
	d.Publish(context.Background(), testEvent())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ListenerDeliveriesTotal.WithLabelValues("dispatch-slow", metrics.ResultFailed)))
}

func TestDispatcher_IgnoresCallerCancellation(t *testing.T) {
	d := NewDispatcher(BreakerSettings{}, logger.NewTestLogger(t))

	var sawErr error
	l := &fakeListener{name: "dispatch-detached", handle: func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	}}
	d.Register(l, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, testEvent())

	require.Equal(t, 1, l.count())
	assert.NoError(t, sawErr)
}

func TestDispatcher_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	d := NewDispatcher(BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Minute}, logger.NewTestLogger(t))

	l := &fakeListener{name: "dispatch-breaker", handle: func(context.Context) error {
		return errors.New("unavailable")
	}}
	d.Register(l, time.Second)

	for i := 0; i < 4; i++ {
		d.Publish(context.Background(), testEvent())
	}

	state, ok := d.State("dispatch-breaker")
	require.True(t, ok)
	assert.Equal(t, gobreaker.StateOpen, state)
	assert.Equal(t, 2, l.count(), "open breaker short-circuits delivery")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ListenerDeliveriesTotal.WithLabelValues("dispatch-breaker", metrics.ResultSkipped)))

	_, ok = d.State("unknown")
	assert.False(t, ok)
}
