// Package server exposes the activity registry over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"activity-signup/internal/common/config"
	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	auditlog "activity-signup/internal/listeners/audit-log"
	"activity-signup/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type activityService interface {
	ListActivities(ctx context.Context) map[string]models.Activity
	GetActivity(ctx context.Context, name string) (models.Activity, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// historyReader serves the audit trail (nil when the audit log is disabled)
type historyReader interface {
	History(ctx context.Context, activity string, limit int) ([]auditlog.Entry, error)
}

// HealthCheck is one readiness dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Option func(*Server)

// WithHistory enables GET /activities/:name/history.
func WithHistory(h historyReader) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics records HTTP metrics on m and serves gatherer next to the
// default registry on /metrics.
func WithMetrics(m *metrics.HTTPMetrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.httpMetrics = m
		s.gatherer = gatherer
	}
}

type Server struct {
	echo   *echo.Echo
	config config.ServerConfig
	logger logger.Logger

	app          activityService
	history      historyReader
	healthChecks []HealthCheck

	httpMetrics *metrics.HTTPMetrics
	gatherer    prometheus.Gatherer
	startTime   time.Time
}

func NewServer(cfg config.ServerConfig, app activityService, healthChecks []HealthCheck, log logger.Logger, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		logger:       log.WithFields(map[string]interface{}{"component": "http"}),
		app:          app,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	e.HTTPErrorHandler = apperrors.NewErrorHandler(srv.logger).HandleHTTPError
	srv.registerMiddleware()
	srv.registerRoutes()

	return srv
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", map[string]interface{}{"address": s.config.Address})
	if err := s.echo.Start(s.config.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
