// internal/workers/export/export-records/config.go
package exportrecords

import "os"

type Config struct {
	Indent   string
	FileMode os.FileMode
}

func LoadConfig() *Config {
	return &Config{
		Indent:   "  ",
		FileMode: 0o644,
	}
}
