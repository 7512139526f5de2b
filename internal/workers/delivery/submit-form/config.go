// internal/workers/delivery/submit-form/config.go
package submitform

import "time"

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
