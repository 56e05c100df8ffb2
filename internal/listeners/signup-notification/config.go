// internal/listeners/signup-notification/config.go
package signupnotification

import (
	"time"

	"activity-signup/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	TopicEnabled bool
	FromEmail    string
	TopicARN     string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	l := config.GetListenerConfig(cfg, ListenerName)
	n := cfg.Notifications
	return &Config{
		EmailEnabled: l.Enabled && n.Email.Enabled,
		TopicEnabled: l.Enabled && n.Topic.Enabled,
		FromEmail:    n.Email.FromEmail,
		TopicARN:     n.Topic.ARN,
		AWSRegion:    n.AWS.Region,
		Timeout:      config.GetDuration(l.Timeout),
	}
}

// Enabled reports whether at least one channel is on.
func (c *Config) Enabled() bool {
	return c.EmailEnabled || c.TopicEnabled
}
