// internal/workers/generation/generate-record/config.go
package generaterecord

type Config struct {
	// Seed makes runs reproducible; zero seeds from the clock.
	Seed uint64
}

func LoadConfig() *Config {
	return &Config{}
}
