// internal/listeners/event-index/config.go
package eventindex

import (
	"time"

	"activity-signup/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
	Index   string
}

func LoadConfig(cfg *config.Config) *Config {
	l := config.GetListenerConfig(cfg, ListenerName)
	return &Config{
		Enabled: cfg.Search.Elasticsearch.Enabled && l.Enabled,
		Timeout: config.GetDuration(l.Timeout),
		Index:   cfg.Search.Elasticsearch.Index,
	}
}
