package instance

import "os"

const envInstanceID = "THOUESA_INSTANCE_ID"

// ID identifies this replica in logs. It prefers THOUESA_INSTANCE_ID, then the
// host name.
func ID() string {
	if id := os.Getenv(envInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
