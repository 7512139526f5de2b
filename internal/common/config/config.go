// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Fetch         FetchConfig        `mapstructure:"fetch"`
	Run           RunConfig          `mapstructure:"run"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Store         StoreConfig        `mapstructure:"store"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Pipeline Config ---

// FetchConfig drives the relay fetch orchestrator.
type FetchConfig struct {
	Timeout   int           `mapstructure:"timeout"` // milliseconds, per relay attempt
	MinLength int           `mapstructure:"min_length"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	Marker    string        `mapstructure:"marker"`
	UserAgent string        `mapstructure:"user_agent"`
	Relays    []RelayConfig `mapstructure:"relays"`
}

// RelayConfig is one row of the relay table. Envelope is "raw" or "json".
type RelayConfig struct {
	Name        string `mapstructure:"name"`
	URLTemplate string `mapstructure:"url_template"`
	Envelope    string `mapstructure:"envelope"`
	ContentsKey string `mapstructure:"contents_key"`
}

// RunConfig holds the run controller defaults.
type RunConfig struct {
	Speed           string `mapstructure:"speed"`
	Count           int    `mapstructure:"count"`
	MaxCount        int    `mapstructure:"max_count"`
	JitterMs        int    `mapstructure:"jitter_ms"`
	SinkOnlyPauseMs int    `mapstructure:"sink_only_pause_ms"`
	SimulatePauseMs int    `mapstructure:"simulate_pause_ms"`
	SubmitTimeout   int    `mapstructure:"submit_timeout"` // milliseconds
	ValidateSink    bool   `mapstructure:"validate_sink"`
}

// CacheConfig holds the document cache settings.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	TTL     int         `mapstructure:"ttl"` // seconds
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig holds settings for persisting finished runs.
type StoreConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// NotificationConfig holds settings for the run completion notification.
type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
