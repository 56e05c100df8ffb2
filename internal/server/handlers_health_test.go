package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"activity-signup/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	env := defaultEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		wantFailed string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
		},
		{
			name: "all healthy",
			checks: []HealthCheck{
				{Name: "postgres", Check: func(context.Context) error { return nil }},
				{Name: "redis", Check: func(context.Context) error { return nil }},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "redis down",
			checks: []HealthCheck{
				{Name: "postgres", Check: func(context.Context) error { return nil }},
				{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: "redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, config.ServerConfig{Address: ":0"}, tt.checks)

			rec := env.do(t, http.MethodGet, "/health/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantFailed == "" {
				assert.Equal(t, "ready", body["status"])
				return
			}
			assert.Equal(t, "unhealthy", body["status"])
			assert.Equal(t, tt.wantFailed, body["failed_check"])
			assert.Equal(t, "connection refused", body["error"])
		})
	}
}
