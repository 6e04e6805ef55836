package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/live"
	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/poller"
	"github.com/dgnsrekt/quantora_dash/internal/relay"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

var fixedStart = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

type stubLive struct {
	connected bool
	sent      []string
	toggles   int
}

func (s *stubLive) Info() live.Info {
	st := live.Disconnected
	if s.connected {
		st = live.Connected
	}
	return live.Info{Status: st, Label: st.Label(), URL: "ws://backend.test/ws"}
}

func (s *stubLive) Log() []live.LogEntry {
	return []live.LogEntry{{Kind: live.LogSystem, Message: "Connected to AI stream"}}
}

func (s *stubLive) SendText(content string) error {
	if !s.connected {
		return live.ErrNotConnected
	}
	s.sent = append(s.sent, content)
	return nil
}

func (s *stubLive) Ping() error          { return s.SendText("ping") }
func (s *stubLive) RequestStatus() error { return s.SendText("request_status") }
func (s *stubLive) Toggle()              { s.toggles++; s.connected = !s.connected }

type stubSurfaces struct{}

func (stubSurfaces) All() []poller.Entry {
	return []poller.Entry{{Name: "system", Endpoint: "/system/status", Interval: "30s"}}
}

func (stubSurfaces) Refresh(_ context.Context, name string) (poller.Entry, error) {
	if name != "system" {
		return poller.Entry{}, poller.ErrUnknownSurface
	}
	return poller.Entry{Name: "system", Endpoint: "/system/status", Fetches: 1}, nil
}

func newTestServer(t *testing.T, lv *stubLive) http.Handler {
	t.Helper()
	// A monitor that never probes stays in demo mode.
	mon := apiclient.NewMonitor(apiclient.MonitorConfig{BaseURL: "http://backend.test", MaxReconnectAttempts: 5}, nil, timers.NewManual(), nil)
	m := metrics.New(fixedStart)
	client := apiclient.NewClient(apiclient.ClientConfig{BaseURL: "http://backend.test"}, mon, nil, nil, m)
	return NewServer(Deps{
		Client:   client,
		State:    mon,
		Live:     lv,
		Surfaces: stubSurfaces{},
		Broker:   relay.NewBroker(),
		Metrics:  m,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestDocsDarkMode(t *testing.T) {
	h := newTestServer(t, &stubLive{})
	w := do(t, h, http.MethodGet, "/docs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}

	w = do(t, h, http.MethodGet, "/docs/events", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "?kinds=") {
		t.Fatalf("events docs status = %d; want 200 with kinds filter docs", w.Code)
	}
}

func TestHealthReportsDemoMode(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Status  string                     `json:"status"`
		Backend apiclient.ConnectionStatus `json:"backend"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Backend.IsConnected || !body.Backend.IsDemoMode {
		t.Fatalf("body = %+v; want ok in demo mode", body)
	}
}

func TestConnectionState(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/api/v1/connection", nil)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["isBackendAvailable"] != false || body["maxReconnectAttempts"] != float64(5) || body["isDemoMode"] != true {
		t.Fatalf("body = %v; want unavailable, max 5, demo", body)
	}
}

func TestGetDataUnknownEndpoint(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/api/v1/data?endpoint=/unknown-endpoint", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data    types.Generic `json:"data"`
		Success bool          `json:"success"`
		IsDemo  bool          `json:"isDemo"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || !resp.IsDemo || resp.Data.Endpoint != "/unknown-endpoint" || resp.Data.Timestamp == "" {
		t.Fatalf("resp = %+v; want generic demo payload", resp)
	}
}

func TestGetDataRequiresEndpoint(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/api/v1/data", nil)
	if w.Code < 400 || w.Code >= 500 {
		t.Fatalf("status = %d; want 4xx", w.Code)
	}
}

func TestPostDataDemo(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodPost, "/api/v1/data", map[string]any{
		"endpoint": "/patterns/live",
		"payload":  map[string]any{"filter": "active"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp apiclient.Typed[types.LivePatterns]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsDemo || len(resp.Data.Patterns) == 0 {
		t.Fatalf("resp = %+v; want demo patterns", resp)
	}
}

func TestTypedSystemStatus(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/api/v1/system/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp apiclient.Typed[types.SystemStatus]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsDemo || !resp.Success || resp.Data.AIEnginesActive != 3 || resp.Data.PatternsLive != 50 {
		t.Fatalf("resp = %+v; want demo system status", resp)
	}
}

func TestLiveSendNotConnected(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodPost, "/api/v1/live/send", map[string]string{"content": "hello"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestLiveSendAndToggle(t *testing.T) {
	lv := &stubLive{}
	h := newTestServer(t, lv)

	w := do(t, h, http.MethodPost, "/api/v1/live/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", w.Code)
	}
	var info map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["status"] != "connected" {
		t.Fatalf("info = %v; want connected", info)
	}

	w = do(t, h, http.MethodPost, "/api/v1/live/send", map[string]string{"type": "message", "content": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("send status = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/v1/live/send", map[string]string{"type": "ping"})
	if w.Code != http.StatusOK {
		t.Fatalf("ping status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if strings.Join(lv.sent, ",") != "hello,ping" {
		t.Fatalf("sent = %v; want hello,ping", lv.sent)
	}

	w = do(t, h, http.MethodPost, "/api/v1/live/send", map[string]string{"type": "message"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty message status = %d, want 400", w.Code)
	}
}

func TestLiveLog(t *testing.T) {
	w := do(t, newTestServer(t, &stubLive{}), http.MethodGet, "/api/v1/live/log", nil)
	var body struct {
		Entries []live.LogEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].Kind != live.LogSystem {
		t.Fatalf("entries = %+v; want one system entry", body.Entries)
	}
}

func TestSurfaceRefresh(t *testing.T) {
	h := newTestServer(t, &stubLive{})
	w := do(t, h, http.MethodPost, "/api/v1/surfaces/system/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/v1/surfaces/nope/refresh", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	w = do(t, h, http.MethodGet, "/api/v1/surfaces", nil)
	if !strings.Contains(w.Body.String(), `"name":"system"`) {
		t.Fatalf("surfaces body = %s; want system surface", w.Body.String())
	}
}

func TestMetricsIncludesSSE(t *testing.T) {
	h := newTestServer(t, &stubLive{})
	_ = do(t, h, http.MethodGet, "/api/v1/system/status", nil)
	w := do(t, h, http.MethodGet, "/api/v1/metrics", nil)

	var body struct {
		API  map[string]int64 `json:"api"`
		HTTP map[string]int64 `json:"http"`
		SSE  map[string]int64 `json:"sse"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.API["demo_responses"] != 1 {
		t.Fatalf("demo_responses = %d; want 1", body.API["demo_responses"])
	}
	// The metrics request itself is counted after it is served.
	if body.HTTP["requests"] != 1 {
		t.Fatalf("http requests = %d; want 1", body.HTTP["requests"])
	}
	if _, ok := body.SSE["clients"]; !ok {
		t.Fatalf("metrics body = %s; want sse section", w.Body.String())
	}
}
