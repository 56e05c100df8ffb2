// internal/listeners/audit-log/config.go
package auditlog

import (
	"time"

	"activity-signup/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	l := config.GetListenerConfig(cfg, ListenerName)
	return &Config{
		Enabled: cfg.Database.Postgres.Enabled && l.Enabled,
		Timeout: config.GetDuration(l.Timeout),
	}
}
