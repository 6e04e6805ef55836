package apiclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
)

// MonitorConfig controls health probing.
type MonitorConfig struct {
	BaseURL              string
	HealthPath           string
	Timeout              time.Duration
	Interval             time.Duration
	BackoffStep          time.Duration
	MaxReconnectAttempts int
}

func (c *MonitorConfig) defaults() {
	if c.HealthPath == "" {
		c.HealthPath = "/health"
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BackoffStep <= 0 {
		c.BackoffStep = 5 * time.Second
	}
	if c.MaxReconnectAttempts < 0 {
		c.MaxReconnectAttempts = 0
	}
}

// Monitor answers whether the backend is reachable and keeps that answer
// fresh. Failed probes retry on a linear backoff (step*attempt) up to
// MaxReconnectAttempts; a fixed-interval probe runs regardless.
type Monitor struct {
	cfg     MonitorConfig
	client  *http.Client
	timers  *timers.Group
	metrics *metrics.Metrics

	mu        sync.RWMutex
	state     ConnectionState
	listeners []func(ConnectionStatus)
	started   bool
	stopCtx   func() bool
}

// NewMonitor creates a monitor in the unavailable state. Nothing is probed
// until Start or CheckHealth.
func NewMonitor(cfg MonitorConfig, client *http.Client, sched timers.Scheduler, m *metrics.Metrics) *Monitor {
	cfg.defaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = http.DefaultClient
	}
	return &Monitor{
		cfg:     cfg,
		client:  client,
		timers:  timers.NewGroup(sched),
		metrics: m,
		state:   ConnectionState{MaxReconnectAttempts: cfg.MaxReconnectAttempts},
	}
}

// Start probes once, then installs the fixed-interval monitor. All timers
// are released by Stop or when ctx is done. Calling Start again is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.CheckHealth(ctx)
	m.timers.Every(m.cfg.Interval, func() { m.CheckHealth(ctx) })

	stop := context.AfterFunc(ctx, m.Stop)
	m.mu.Lock()
	m.stopCtx = stop
	m.mu.Unlock()

	slog.Info("health monitor started", "url", m.healthURL(), "interval", m.cfg.Interval)
}

// Stop releases the interval and any pending backoff probe.
func (m *Monitor) Stop() {
	m.timers.Close()
	m.mu.Lock()
	stop := m.stopCtx
	m.stopCtx = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// State returns a copy of the current connection state.
func (m *Monitor) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// OnChange registers fn to be called whenever availability flips.
func (m *Monitor) OnChange(fn func(ConnectionStatus)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// CheckHealth issues one probe and updates state. Failures never escape;
// they are folded into the unavailable state and may queue a backoff probe.
func (m *Monitor) CheckHealth(ctx context.Context) bool {
	start := time.Now()
	err := m.probe(ctx)

	m.mu.Lock()
	was := m.state.IsBackendAvailable
	var retryIn time.Duration
	if err == nil {
		m.state.IsBackendAvailable = true
		m.state.ReconnectAttempts = 0
	} else {
		m.state.IsBackendAvailable = false
		if m.state.ReconnectAttempts < m.state.MaxReconnectAttempts {
			m.state.ReconnectAttempts++
			retryIn = m.cfg.BackoffStep * time.Duration(m.state.ReconnectAttempts)
		}
	}
	now := m.state
	listeners := append([]func(ConnectionStatus){}, m.listeners...)
	m.mu.Unlock()

	if err == nil {
		m.metrics.ProbeSucceeded(time.Since(start))
		if !was {
			slog.Info("backend connected", "url", m.healthURL())
		}
	} else {
		m.metrics.ProbeFailed()
		if was {
			slog.Warn("backend lost, switching to demo mode", "url", m.healthURL(), "error", err)
		} else {
			slog.Debug("backend unavailable, demo mode", "url", m.healthURL(), "attempts", now.ReconnectAttempts, "error", err)
		}
	}

	if retryIn > 0 {
		m.metrics.BackoffScheduled()
		m.timers.AfterFunc(retryIn, func() { m.CheckHealth(ctx) })
	}

	if was != now.IsBackendAvailable {
		for _, fn := range listeners {
			fn(now.Status())
		}
	}
	return now.IsBackendAvailable
}

func (m *Monitor) healthURL() string {
	return m.cfg.BaseURL + m.cfg.HealthPath
}

func (m *Monitor) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.healthURL(), nil)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
