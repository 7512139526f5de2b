// internal/workers/extraction/fetch-document/config.go
package fetchdocument

import (
	"time"

	"formqa/internal/common/config"
)

// Envelope kinds of a relay response.
const (
	EnvelopeRaw  = "raw"
	EnvelopeJSON = "json"
)

// Relay is one row of the relay table. {url} in URLTemplate expands to the
// query-escaped target and {raw} to the target as is.
type Relay struct {
	Name        string
	URLTemplate string
	Envelope    string
	ContentsKey string
}

type Config struct {
	Relays         []Relay
	Timeout        time.Duration
	MinLength      int
	MaxBytes       int64
	Marker         string
	PrivateMarkers []string
	UserAgent      string
	CacheTTL       time.Duration
}

// DefaultRelays lists the relays in priority order.
func DefaultRelays() []Relay {
	return []Relay{
		{Name: "direct", URLTemplate: "{raw}", Envelope: EnvelopeRaw},
		{Name: "allorigins", URLTemplate: "https://api.allorigins.win/get?url={url}&disableCache=true", Envelope: EnvelopeJSON, ContentsKey: "contents"},
		{Name: "codetabs", URLTemplate: "https://api.codetabs.com/v1/proxy?quest={url}", Envelope: EnvelopeRaw},
		{Name: "corsproxy", URLTemplate: "https://corsproxy.io/?{url}", Envelope: EnvelopeRaw},
		{Name: "thingproxy", URLTemplate: "https://thingproxy.freeboard.io/fetch/{url}", Envelope: EnvelopeRaw},
	}
}

func defaultPrivateMarkers() []string {
	return []string{"docs-google-forms-error-message", "You need permission"}
}

func LoadConfig() *Config {
	return &Config{
		Relays:         DefaultRelays(),
		Timeout:        10 * time.Second,
		MinLength:      500,
		MaxBytes:       8 << 20,
		Marker:         "FB_PUBLIC_LOAD_DATA_",
		PrivateMarkers: defaultPrivateMarkers(),
		CacheTTL:       10 * time.Minute,
	}
}

// FromConfig builds the handler config from the application configuration.
func FromConfig(fetch config.FetchConfig, cache config.CacheConfig) *Config {
	cfg := LoadConfig()
	cfg.Timeout = config.GetDuration(fetch.Timeout)
	cfg.MinLength = fetch.MinLength
	cfg.Marker = fetch.Marker
	cfg.UserAgent = fetch.UserAgent
	if fetch.MaxBytes > 0 {
		cfg.MaxBytes = fetch.MaxBytes
	}
	if cache.TTL > 0 {
		cfg.CacheTTL = time.Duration(cache.TTL) * time.Second
	}

	if len(fetch.Relays) > 0 {
		cfg.Relays = make([]Relay, 0, len(fetch.Relays))
		for _, r := range fetch.Relays {
			name := r.Name
			if name == "" {
				name = r.URLTemplate
			}
			cfg.Relays = append(cfg.Relays, Relay{
				Name:        name,
				URLTemplate: r.URLTemplate,
				Envelope:    r.Envelope,
				ContentsKey: r.ContentsKey,
			})
		}
	}
	return cfg
}
