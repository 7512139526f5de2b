// internal/workers/delivery/notify-run/config.go
package notifyrun

import (
	"time"

	"formqa/internal/common/config"
)

type Config struct {
	Enabled  bool
	Region   string
	TopicARN string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Region:  "us-east-1",
		Timeout: 10 * time.Second,
	}
}

// FromConfig builds the notifier settings from the application config.
func FromConfig(cfg config.NotificationConfig) *Config {
	c := LoadConfig()
	c.Enabled = cfg.SNS.Enabled
	c.TopicARN = cfg.SNS.TopicARN
	if cfg.SNS.Region != "" {
		c.Region = cfg.SNS.Region
	}
	return c
}
