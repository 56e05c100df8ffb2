// internal/listeners/roster-mirror/config.go
package rostermirror

import (
	"time"

	"activity-signup/internal/common/config"
)

type Config struct {
	Enabled   bool
	Timeout   time.Duration
	KeyPrefix string
}

func LoadConfig(cfg *config.Config) *Config {
	l := config.GetListenerConfig(cfg, ListenerName)
	return &Config{
		Enabled:   cfg.Database.Redis.Enabled && l.Enabled,
		Timeout:   config.GetDuration(l.Timeout),
		KeyPrefix: "activity",
	}
}
