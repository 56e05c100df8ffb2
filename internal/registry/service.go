// internal/registry/service.go
package registry

import (
	"context"
	"fmt"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/common/observability"
	"activity-signup/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	OperationList       = "list"
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

// Publisher receives roster events after a mutation has been committed.
type Publisher interface {
	Publish(ctx context.Context, event models.RosterEvent)
}

// Service wraps the Registry with instrumentation and event publication.
type Service struct {
	registry  *Registry
	publisher Publisher
	clock     clockwork.Clock
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(reg *Registry, publisher Publisher, clock clockwork.Clock, obs *observability.Observability, log logger.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		registry:  reg,
		publisher: publisher,
		clock:     clock,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

func (s *Service) ListActivities(ctx context.Context) map[string]models.Activity {
	_, span := s.obs.StartSpan(ctx, "registry.list")
	defer span.End()

	start := s.clock.Now()
	activities := s.registry.List()
	s.record(ctx, OperationList, start, nil)

	span.SetAttributes(attribute.Int("activity.count", len(activities)))
	return activities
}

// GetActivity returns one activity without recording an operation.
func (s *Service) GetActivity(_ context.Context, name string) (models.Activity, error) {
	return s.registry.Get(name)
}

// Signup registers email for activity and returns the confirmation message.
func (s *Service) Signup(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.obs.StartSpan(ctx, "registry.signup",
		attribute.String("activity", activity),
	)
	defer span.End()

	start := s.clock.Now()
	updated, err := s.registry.Signup(activity, email)
	s.record(ctx, OperationSignup, start, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	s.logger.Info("student signed up", map[string]interface{}{
		"activity":     activity,
		"email":        email,
		"participants": len(updated.Participants),
	})
	s.publish(ctx, models.RosterEventSignup, activity, email, updated)

	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Unregister removes email from activity and returns the confirmation message.
func (s *Service) Unregister(ctx context.Context, activity, email string) (string, error) {
	ctx, span := s.obs.StartSpan(ctx, "registry.unregister",
		attribute.String("activity", activity),
	)
	defer span.End()

	start := s.clock.Now()
	updated, err := s.registry.Unregister(activity, email)
	s.record(ctx, OperationUnregister, start, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	s.logger.Info("student unregistered", map[string]interface{}{
		"activity":     activity,
		"email":        email,
		"participants": len(updated.Participants),
	})
	s.publish(ctx, models.RosterEventUnregister, activity, email, updated)

	return fmt.Sprintf("Unregistered %s from %s", email, activity), nil
}

// RefreshGauges publishes the current roster sizes.
func (s *Service) RefreshGauges() {
	metrics.ActivityParticipants.Reset()
	for name, a := range s.registry.List() {
		metrics.ActivityParticipants.WithLabelValues(name).Set(float64(len(a.Participants)))
	}
}

func (s *Service) record(ctx context.Context, operation string, start time.Time, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultRejected
	}
	elapsed := s.clock.Since(start)

	metrics.RosterOperationsTotal.WithLabelValues(operation, result).Inc()
	metrics.RosterOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	s.obs.RecordOperation(ctx, operation, result)
	s.obs.RecordOperationDuration(ctx, operation, elapsed, result)
}

func (s *Service) publish(ctx context.Context, eventType models.RosterEventType, activity, email string, updated models.Activity) {
	metrics.ActivityParticipants.WithLabelValues(activity).Set(float64(len(updated.Participants)))

	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, models.RosterEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		Activity:         activity,
		Email:            email,
		ParticipantCount: len(updated.Participants),
		MaxParticipants:  updated.MaxParticipants,
		Participants:     updated.Participants,
		OccurredAt:       s.clock.Now().UTC(),
	})
}
