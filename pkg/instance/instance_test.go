package instance

import "testing"

func TestIDPrefersEnv(t *testing.T) {
	t.Setenv(envInstanceID, "cron-7")
	if got := ID(); got != "cron-7" {
		t.Fatalf("expected env id, got %q", got)
	}
}

func TestIDFallsBack(t *testing.T) {
	t.Setenv(envInstanceID, "")
	if ID() == "" {
		t.Fatalf("expected non-empty fallback id")
	}
}
