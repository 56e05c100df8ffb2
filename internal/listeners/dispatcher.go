// Package listeners fans committed roster events out to side-channel
// consumers. Delivery is best effort: failures are logged and counted and
// never reach the caller.
package listeners

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/models"

	"github.com/sony/gobreaker"
)

// Listener consumes roster events.
type Listener interface {
	Name() string
	Handle(ctx context.Context, event models.RosterEvent) error
}

// BreakerSettings tunes the circuit breaker placed around each listener.
type BreakerSettings struct {
	FailureThreshold uint32        // consecutive failures that open the breaker
	OpenTimeout      time.Duration // how long the breaker stays open
}

var DefaultBreakerSettings = BreakerSettings{
	FailureThreshold: 5,
	OpenTimeout:      30 * time.Second,
}

type entry struct {
	listener Listener
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
}

// Dispatcher delivers each event to every registered listener in
// registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	entries  []entry
	settings BreakerSettings
	logger   logger.Logger
}

func NewDispatcher(settings BreakerSettings, log logger.Logger) *Dispatcher {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = DefaultBreakerSettings.FailureThreshold
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = DefaultBreakerSettings.OpenTimeout
	}
	return &Dispatcher{
		settings: settings,
		logger:   log.WithFields(map[string]interface{}{"component": "listeners"}),
	}
}

// Register adds l. Each delivery to l is bounded by timeout.
func (d *Dispatcher) Register(l Listener, timeout time.Duration) {
	name := l.Name()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     d.settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= d.settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn("listener breaker state changed", map[string]interface{}{
				"listener": name,
				"from":     from.String(),
				"to":       to.String(),
			})
		},
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, entry{listener: l, breaker: breaker, timeout: timeout})
	d.logger.Info("listener registered", map[string]interface{}{
		"listener": name,
		"timeout":  timeout.String(),
	})
}

// Names lists registered listeners in delivery order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		names = append(names, e.listener.Name())
	}
	return names
}

// State reports the breaker state of the named listener.
func (d *Dispatcher) State(name string) (gobreaker.State, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.entries {
		if e.listener.Name() == name {
			return e.breaker.State(), true
		}
	}
	return gobreaker.StateClosed, false
}

// Publish delivers event to every listener. Cancellation of ctx is ignored;
// only the per-listener timeout bounds a delivery.
func (d *Dispatcher) Publish(ctx context.Context, event models.RosterEvent) {
	d.mu.RLock()
	entries := append([]entry(nil), d.entries...)
	d.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, e := range entries {
		d.deliver(base, e, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e entry, event models.RosterEvent) {
	name := e.listener.Name()
	start := time.Now()

	_, err := e.breaker.Execute(func() (interface{}, error) {
		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		return nil, safeHandle(callCtx, e.listener, event)
	})

	metrics.ListenerDeliveryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.ListenerDeliveriesTotal.WithLabelValues(name, metrics.ResultSuccess).Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ListenerDeliveriesTotal.WithLabelValues(name, metrics.ResultSkipped).Inc()
		d.logger.Debug("listener skipped, breaker open", map[string]interface{}{
			"listener": name,
			"eventId":  event.ID,
		})
	default:
		metrics.ListenerDeliveriesTotal.WithLabelValues(name, metrics.ResultFailed).Inc()
		d.logger.Warn("listener delivery failed", map[string]interface{}{
			"listener": name,
			"eventId":  event.ID,
			"activity": event.Activity,
			"error":    err.Error(),
		})
	}
}

func safeHandle(ctx context.Context, l Listener, event models.RosterEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener %s panicked: %v", l.Name(), r)
		}
	}()
	return l.Handle(ctx, event)
}
