package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.APIBaseURL, "http://localhost:8000/api"; got != want {
		t.Fatalf("APIBaseURL = %q; want %q", got, want)
	}
	if got, want := cfg.HealthTimeout(), 3*time.Second; got != want {
		t.Fatalf("HealthTimeout() = %v; want %v", got, want)
	}
	if got, want := cfg.HealthInterval(), 30*time.Second; got != want {
		t.Fatalf("HealthInterval() = %v; want %v", got, want)
	}
	if got, want := cfg.BackoffStep(), 5*time.Second; got != want {
		t.Fatalf("BackoffStep() = %v; want %v", got, want)
	}
	if cfg.MaxReconnectAttempts != 5 {
		t.Fatalf("MaxReconnectAttempts = %d; want 5", cfg.MaxReconnectAttempts)
	}
	if cfg.FetchTimeout() != 0 {
		t.Fatalf("FetchTimeout() = %v; want 0", cfg.FetchTimeout())
	}
	if got, want := cfg.LiveReconnectDelay(), 5*time.Second; got != want {
		t.Fatalf("LiveReconnectDelay() = %v; want %v", got, want)
	}
	if cfg.NotifyURL != "" {
		t.Fatalf("NotifyURL = %q; want empty", cfg.NotifyURL)
	}
}

func TestLoadReadsEnvAndClamps(t *testing.T) {
	t.Setenv("QUANTORA_API_BASE_URL", "http://backend:9000/api/")
	t.Setenv("QUANTORA_HEALTH_PATH", "healthz")
	t.Setenv("QUANTORA_HEALTH_TIMEOUT_MS", "5")
	t.Setenv("QUANTORA_MAX_RECONNECT_ATTEMPTS", "-3")
	t.Setenv("QUANTORA_LIVE_ENABLED", "false")
	t.Setenv("QUANTORA_FETCH_TIMEOUT_MS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.APIBaseURL, "http://backend:9000/api"; got != want {
		t.Fatalf("APIBaseURL = %q; want %q", got, want)
	}
	if got, want := cfg.HealthPath, "/healthz"; got != want {
		t.Fatalf("HealthPath = %q; want %q", got, want)
	}
	if cfg.HealthTimeoutMS != 100 {
		t.Fatalf("HealthTimeoutMS = %d; want clamp to 100", cfg.HealthTimeoutMS)
	}
	if cfg.MaxReconnectAttempts != 0 {
		t.Fatalf("MaxReconnectAttempts = %d; want 0", cfg.MaxReconnectAttempts)
	}
	if cfg.LiveEnabled {
		t.Fatal("LiveEnabled = true; want false")
	}
	if cfg.FetchTimeoutMS != 0 {
		t.Fatalf("FetchTimeoutMS = %d; want default 0", cfg.FetchTimeoutMS)
	}
}

func TestPortCandidates(t *testing.T) {
	cfg := &Config{BindAddr: "127.0.0.1:3000", PortScanAttempts: 3}
	want := []string{"127.0.0.1:3001", "127.0.0.1:3002", "127.0.0.1:3003"}
	if got := cfg.PortCandidates(); !reflect.DeepEqual(got, want) {
		t.Fatalf("PortCandidates() = %v; want %v", got, want)
	}

	bad := &Config{BindAddr: "no-port", PortScanAttempts: 3}
	if got := bad.PortCandidates(); got != nil {
		t.Fatalf("PortCandidates() = %v; want nil", got)
	}
}

func TestLoadSurfacesMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadSurfaces(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSurfaces() error = %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSurfaces()) {
		t.Fatalf("LoadSurfaces() = %v; want defaults", got)
	}
}

func TestLoadSurfacesParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surfaces.yaml")
	body := "surfaces:\n  - name: patterns\n    endpoint: /patterns/live\n    interval_ms: 5000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	got, err := LoadSurfaces(path)
	if err != nil {
		t.Fatalf("LoadSurfaces() error = %v", err)
	}
	want := []Surface{{Name: "patterns", Endpoint: "/patterns/live", IntervalMS: 5000}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadSurfaces() = %v; want %v", got, want)
	}
	if got[0].Interval() != 5*time.Second {
		t.Fatalf("Interval() = %v; want 5s", got[0].Interval())
	}
}

func TestValidateSurfaces(t *testing.T) {
	tests := []struct {
		name     string
		surfaces []Surface
		wantErr  string
	}{
		{"empty", nil, "at least one surface"},
		{"missing name", []Surface{{Endpoint: "/x", IntervalMS: 1000}}, "missing name"},
		{"relative endpoint", []Surface{{Name: "a", Endpoint: "x", IntervalMS: 1000}}, "must start with /"},
		{"fast interval", []Surface{{Name: "a", Endpoint: "/x", IntervalMS: 10}}, "interval_ms"},
		{"duplicate", []Surface{{Name: "a", Endpoint: "/x", IntervalMS: 1000}, {Name: "a", Endpoint: "/y", IntervalMS: 1000}}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSurfaces(tt.surfaces)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateSurfaces() = %v; want error containing %q", err, tt.wantErr)
			}
		})
	}
	if err := ValidateSurfaces(DefaultSurfaces()); err != nil {
		t.Fatalf("ValidateSurfaces(defaults) = %v; want nil", err)
	}
}
