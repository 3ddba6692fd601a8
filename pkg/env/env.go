package env

import (
	"os"
	"strings"
)

const prefix = "THOUESA_"

// Get reads THOUESA_<key>, then the bare key, then returns fallback.
// Used before config.Load has run, so it stays free of envconfig.
func Get(key, fallback string) string {
	for _, name := range []string{prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
