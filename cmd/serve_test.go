package cmd

import (
	"testing"
)

func TestResolveServeHostPort_Defaults(t *testing.T) {
	t.Setenv("WEB_PORT", "")
	t.Setenv("WEB_HOST", "")

	port, host := resolveServeHostPort(serveCmd)
	if port != 8080 {
		t.Errorf("expected default port 8080, got %d", port)
	}
	if host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", host)
	}
}

func TestResolveServeHostPort_EnvOverrides(t *testing.T) {
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("WEB_HOST", "127.0.0.1")

	port, host := resolveServeHostPort(serveCmd)
	if port != 9090 {
		t.Errorf("expected port 9090 from WEB_PORT, got %d", port)
	}
	if host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1 from WEB_HOST, got %s", host)
	}
}

func TestResolveServeHostPort_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("WEB_HOST", "")

	for _, bad := range []string{"not-a-port", "-1", "80 80"} {
		t.Setenv("WEB_PORT", bad)
		port, _ := resolveServeHostPort(serveCmd)
		if port != 8080 {
			t.Errorf("WEB_PORT=%q: expected fallback to 8080, got %d", bad, port)
		}
	}
}
