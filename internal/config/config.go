package config

import (
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the dashboard client and its gateway.
type Config struct {
	// Backend endpoints
	APIBaseURL string
	WSURL      string
	HealthPath string

	// Connection monitor
	HealthTimeoutMS      int
	HealthIntervalMS     int
	BackoffStepMS        int
	MaxReconnectAttempts int

	// Data fetches; 0 disables the timeout.
	FetchTimeoutMS int

	// Live update channel
	LiveEnabled     bool
	LiveReconnectMS int

	// Local gateway
	BindAddr         string
	PortAutoFallback bool
	PortScanAttempts int
	SurfacesFile     string

	// Push notifications; an empty URL disables them.
	NotifyURL      string
	NotifyMinLevel int

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		APIBaseURL:           strings.TrimRight(getEnvOrDefault("QUANTORA_API_BASE_URL", "http://localhost:8000/api"), "/"),
		WSURL:                getEnvOrDefault("QUANTORA_WS_URL", "ws://localhost:8000/ws/live-discovery"),
		HealthPath:           getEnvOrDefault("QUANTORA_HEALTH_PATH", "/health"),
		HealthTimeoutMS:      getEnvIntOrDefault("QUANTORA_HEALTH_TIMEOUT_MS", 3000),
		HealthIntervalMS:     getEnvIntOrDefault("QUANTORA_HEALTH_INTERVAL_MS", 30000),
		BackoffStepMS:        getEnvIntOrDefault("QUANTORA_BACKOFF_STEP_MS", 5000),
		MaxReconnectAttempts: getEnvIntOrDefault("QUANTORA_MAX_RECONNECT_ATTEMPTS", 5),
		FetchTimeoutMS:       getEnvIntOrDefault("QUANTORA_FETCH_TIMEOUT_MS", 0),
		LiveEnabled:          getEnvBoolOrDefault("QUANTORA_LIVE_ENABLED", true),
		LiveReconnectMS:      getEnvIntOrDefault("QUANTORA_LIVE_RECONNECT_MS", 5000),
		BindAddr:             getEnvOrDefault("QUANTORA_BIND_ADDR", "127.0.0.1:3000"),
		PortAutoFallback:     getEnvBoolOrDefault("QUANTORA_PORT_AUTO_FALLBACK", true),
		PortScanAttempts:     getEnvIntOrDefault("QUANTORA_PORT_SCAN_ATTEMPTS", 10),
		SurfacesFile:         getEnvOrDefault("QUANTORA_SURFACES_FILE", "./config/surfaces.yaml"),
		NotifyURL:            getEnvOrDefault("QUANTORA_NTFY_URL", ""),
		NotifyMinLevel:       getEnvIntOrDefault("QUANTORA_NTFY_MIN_LEVEL", 0),
		LogLevel:             strings.ToLower(getEnvOrDefault("QUANTORA_LOG_LEVEL", "info")),
		LogFile:              getEnvOrDefault("QUANTORA_LOG_FILE", "logs/dashboard.log"),
	}
	cfg.clamp()
	return cfg, nil
}

func (c *Config) clamp() {
	if !strings.HasPrefix(c.HealthPath, "/") {
		c.HealthPath = "/" + c.HealthPath
	}
	if c.HealthTimeoutMS < 100 {
		c.HealthTimeoutMS = 100
	}
	if c.HealthIntervalMS < 1000 {
		c.HealthIntervalMS = 1000
	}
	if c.BackoffStepMS < 1000 {
		c.BackoffStepMS = 1000
	}
	if c.MaxReconnectAttempts < 0 {
		c.MaxReconnectAttempts = 0
	}
	if c.FetchTimeoutMS < 0 {
		c.FetchTimeoutMS = 0
	}
	if c.LiveReconnectMS < 1000 {
		c.LiveReconnectMS = 1000
	}
	if c.PortScanAttempts < 0 {
		c.PortScanAttempts = 0
	}
}

func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMS) * time.Millisecond
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalMS) * time.Millisecond
}

func (c *Config) BackoffStep() time.Duration {
	return time.Duration(c.BackoffStepMS) * time.Millisecond
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

func (c *Config) LiveReconnectDelay() time.Duration {
	return time.Duration(c.LiveReconnectMS) * time.Millisecond
}

// PortCandidates lists the addresses tried after BindAddr when it is busy:
// the same host on the next PortScanAttempts ports.
func (c *Config) PortCandidates() []string {
	host, portStr, err := net.SplitHostPort(c.BindAddr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	out := make([]string, 0, c.PortScanAttempts)
	for i := 1; i <= c.PortScanAttempts && port+i <= 65535; i++ {
		out = append(out, net.JoinHostPort(host, strconv.Itoa(port+i)))
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return defaultVal
}
