// internal/workers/delivery/submit-sink/config.go
package submitsink

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
