// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Speed tiers accepted by run.speed.
var validSpeeds = map[string]bool{
	"conservative": true,
	"balanced":     true,
	"aggressive":   true,
}

// Load reads configs/config.yaml (optional) plus config.<env>.yaml, then applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	registerDefaults(v)

	// FETCH_TIMEOUT, RUN_SPEED, CACHE_REDIS_ADDRESS ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// registerDefaults makes every key known to viper so AutomaticEnv can override it.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "formqa")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("fetch.timeout", 10000)
	v.SetDefault("fetch.min_length", 500)
	v.SetDefault("fetch.max_bytes", 8<<20)
	v.SetDefault("fetch.marker", "FB_PUBLIC_LOAD_DATA_")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; formqa/1.0)")

	v.SetDefault("run.speed", "balanced")
	v.SetDefault("run.count", 10)
	v.SetDefault("run.max_count", 500)
	v.SetDefault("run.jitter_ms", 500)
	v.SetDefault("run.sink_only_pause_ms", 200)
	v.SetDefault("run.simulate_pause_ms", 50)
	v.SetDefault("run.submit_timeout", 15000)
	v.SetDefault("run.validate_sink", true)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 600)
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.database", "formqa")
	v.SetDefault("store.postgres.user", "formqa")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.sslmode", "disable")

	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.region", "us-east-1")
	v.SetDefault("notifications.sns.topic_arn", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if secrets are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Store.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Store.Postgres.Password = val
		}
	}
	if cfg.Cache.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Redis.Password = val
		}
	}
	if cfg.Notifications.SNS.TopicARN == "" {
		if val := os.Getenv("SNS_TOPIC_ARN"); val != "" {
			cfg.Notifications.SNS.TopicARN = val
		}
	}
}

// applyDefaults fills values that were explicitly zeroed in a config file
func applyDefaults(cfg *Config) {
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 10000
	}
	if cfg.Fetch.MinLength <= 0 {
		cfg.Fetch.MinLength = 500
	}
	if cfg.Fetch.Marker == "" {
		cfg.Fetch.Marker = "FB_PUBLIC_LOAD_DATA_"
	}
	for i, relay := range cfg.Fetch.Relays {
		if relay.Envelope == "" {
			relay.Envelope = "raw"
		}
		if relay.Envelope == "json" && relay.ContentsKey == "" {
			relay.ContentsKey = "contents"
		}
		cfg.Fetch.Relays[i] = relay
	}

	if cfg.Run.Speed == "" {
		cfg.Run.Speed = "balanced"
	}
	if cfg.Run.MaxCount <= 0 {
		cfg.Run.MaxCount = 500
	}
	if cfg.Run.SubmitTimeout <= 0 {
		cfg.Run.SubmitTimeout = 15000
	}

	if cfg.Store.Postgres.MaxConnections == 0 {
		cfg.Store.Postgres.MaxConnections = 5
	}
	if cfg.Store.Postgres.MaxIdle == 0 {
		cfg.Store.Postgres.MaxIdle = 2
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !validSpeeds[cfg.Run.Speed] {
		return fmt.Errorf("run.speed must be one of conservative, balanced, aggressive (got %q)", cfg.Run.Speed)
	}
	if cfg.Run.Count < 0 || cfg.Run.Count > cfg.Run.MaxCount {
		return fmt.Errorf("run.count must be between 0 and %d", cfg.Run.MaxCount)
	}

	for i, relay := range cfg.Fetch.Relays {
		if relay.URLTemplate == "" {
			return fmt.Errorf("fetch.relays[%d].url_template is required", i)
		}
		if relay.Envelope != "raw" && relay.Envelope != "json" {
			return fmt.Errorf("fetch.relays[%d].envelope must be raw or json", i)
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.Redis.Address == "" {
		return fmt.Errorf("cache.redis.address is required when cache is enabled")
	}
	if cfg.Store.Enabled && (cfg.Store.Postgres.Host == "" || cfg.Store.Postgres.Database == "") {
		return fmt.Errorf("store.postgres.host and store.postgres.database are required when store is enabled")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
