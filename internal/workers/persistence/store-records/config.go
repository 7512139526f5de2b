// internal/workers/persistence/store-records/config.go
package storerecords

import "time"

type Config struct {
	Timeout      time.Duration
	HistoryLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		HistoryLimit: 20,
	}
}
