package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/demo"
	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

// ClientConfig controls the data access façade.
type ClientConfig struct {
	BaseURL string
	// FetchTimeout bounds a single Get/Post. Zero means no per-call bound
	// beyond the caller's context.
	FetchTimeout time.Duration
	// Now is the clock used for timestamps and demo generation.
	Now func() time.Time
}

// Client is the single entry point the UI uses for backend data. Get and
// Post never fail: when the backend is unavailable, or a call fails, the
// caller gets a demo payload of the same shape with IsDemo set.
type Client struct {
	cfg      ClientConfig
	state    StateSource
	registry *demo.Registry
	http     *http.Client
	metrics  *metrics.Metrics
}

// NewClient wires a façade to a state source (normally a *Monitor).
func NewClient(cfg ClientConfig, state StateSource, registry *demo.Registry, client *http.Client, m *metrics.Metrics) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if registry == nil {
		registry = demo.NewRegistry()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{cfg: cfg, state: state, registry: registry, http: client, metrics: m}
}

// ConnectionStatus reports the badge view of the current state.
func (c *Client) ConnectionStatus() ConnectionStatus {
	return c.state.State().Status()
}

// Registry exposes the demo registry so callers can add datasets.
func (c *Client) Registry() *demo.Registry {
	return c.registry
}

// Get fetches endpoint from the backend, or demo data in its place.
func (c *Client) Get(ctx context.Context, endpoint string) Response {
	return c.call(ctx, http.MethodGet, endpoint, nil)
}

// Post sends body as JSON to endpoint. Same fallback rules as Get.
func (c *Client) Post(ctx context.Context, endpoint string, body any) Response {
	return c.call(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) call(ctx context.Context, method, endpoint string, body any) Response {
	endpoint = normalizeEndpoint(endpoint)
	if !c.state.State().IsBackendAvailable {
		return c.demoResponse(endpoint, false)
	}

	data, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		slog.Debug("api call failed, using demo data", "method", method, "endpoint", endpoint, "error", err)
		return c.demoResponse(endpoint, true)
	}

	c.metrics.LiveResponse()
	return Response{
		Data:      data,
		Success:   true,
		IsDemo:    false,
		Timestamp: c.timestamp(),
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s %s: response is not valid JSON", method, endpoint)
	}
	return json.RawMessage(raw), nil
}

func (c *Client) demoResponse(endpoint string, fellBack bool) Response {
	now := c.cfg.Now()
	payload := c.registry.Generate(demo.Context{
		Endpoint:  endpoint,
		Now:       now,
		Connected: c.state.State().IsBackendAvailable,
	})
	raw, err := json.Marshal(payload)
	if err != nil {
		// Generators return plain structs; this only trips on a bad custom one.
		slog.Error("demo payload encode failed", "endpoint", endpoint, "error", err)
		raw = json.RawMessage(`{}`)
	}
	c.metrics.DemoResponse(fellBack)
	return Response{
		Data:      raw,
		Success:   true,
		IsDemo:    true,
		Timestamp: now.UTC().Format(demo.TimestampLayout),
	}
}

func (c *Client) timestamp() string {
	return c.cfg.Now().UTC().Format(demo.TimestampLayout)
}

func normalizeEndpoint(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		return "/" + endpoint
	}
	return endpoint
}

// Fetch gets endpoint and decodes it as T. A live payload that does not
// fit T is treated like a failed call and replaced by demo data.
func Fetch[T any](ctx context.Context, c *Client, endpoint string) Typed[T] {
	resp := c.Get(ctx, endpoint)
	out, err := Decode[T](resp)
	if err == nil {
		return out
	}
	if !resp.IsDemo {
		slog.Warn("live payload has unexpected shape, using demo data", "endpoint", endpoint, "error", err)
		out, err = Decode[T](c.demoResponse(normalizeEndpoint(endpoint), true))
		if err == nil {
			return out
		}
	}
	out.Success = false
	out.Error = err.Error()
	return out
}

// GetSystemStatus fetches the system overview.
func (c *Client) GetSystemStatus(ctx context.Context) Typed[types.SystemStatus] {
	return Fetch[types.SystemStatus](ctx, c, demo.EndpointSystem)
}

// GetLivePatterns fetches the currently live patterns.
func (c *Client) GetLivePatterns(ctx context.Context) Typed[types.LivePatterns] {
	return Fetch[types.LivePatterns](ctx, c, demo.EndpointPatterns)
}

// GetTournamentData fetches the tournament leaderboard.
func (c *Client) GetTournamentData(ctx context.Context) Typed[types.Tournament] {
	return Fetch[types.Tournament](ctx, c, demo.EndpointTournament)
}

// GetEvolutionStatus fetches the evolution run state.
func (c *Client) GetEvolutionStatus(ctx context.Context) Typed[types.Evolution] {
	return Fetch[types.Evolution](ctx, c, demo.EndpointEvolution)
}

// GetAIEngines fetches the AI engine roster.
func (c *Client) GetAIEngines(ctx context.Context) Typed[types.AIEngines] {
	return Fetch[types.AIEngines](ctx, c, demo.EndpointEngines)
}

// GetLiveAlerts fetches the live alert feed.
func (c *Client) GetLiveAlerts(ctx context.Context) Typed[types.LiveAlerts] {
	return Fetch[types.LiveAlerts](ctx, c, demo.EndpointAlerts)
}

// GetHealth fetches the backend health report.
func (c *Client) GetHealth(ctx context.Context) Typed[types.Health] {
	return Fetch[types.Health](ctx, c, demo.EndpointHealth)
}
