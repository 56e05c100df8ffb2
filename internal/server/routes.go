package server

import (
	"net/http"

	"activity-signup/internal/common/metrics"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.gatherer)))

	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/static/index.html")
	})
	if s.config.StaticDir != "" {
		s.echo.Static("/static", s.config.StaticDir)
	}

	limit := newRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)

	s.echo.GET("/activities", s.handleListActivities)
	s.echo.POST("/activities/:name/signup", s.handleSignup, limit)
	s.echo.DELETE("/activities/:name/unregister", s.handleUnregister, limit)

	if s.history != nil {
		s.echo.GET("/activities/:name/history", s.handleHistory)
	}
}
