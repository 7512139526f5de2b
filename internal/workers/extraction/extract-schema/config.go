// internal/workers/extraction/extract-schema/config.go
package extractschema

type Config struct {
	Marker string
}

func LoadConfig() *Config {
	return &Config{
		Marker: "FB_PUBLIC_LOAD_DATA_",
	}
}
