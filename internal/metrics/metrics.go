package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts client activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	start time.Time

	probesOK      atomic.Int64
	probesFailed  atomic.Int64
	backoffQueued atomic.Int64
	lastProbeMs   atomic.Int64

	liveResponses atomic.Int64
	demoResponses atomic.Int64
	fallbacks     atomic.Int64

	streamConnects   atomic.Int64
	streamReconnects atomic.Int64
	streamMalformed  atomic.Int64
	streamUnknown    atomic.Int64
	streamSent       atomic.Int64

	httpRequests atomic.Int64
	httpErrors   atomic.Int64

	mu       sync.Mutex
	received map[string]int64
}

func New(start time.Time) *Metrics {
	return &Metrics{start: start, received: make(map[string]int64)}
}

func (m *Metrics) ProbeSucceeded(latency time.Duration) {
	if m == nil {
		return
	}
	m.probesOK.Add(1)
	m.lastProbeMs.Store(latency.Milliseconds())
}

func (m *Metrics) ProbeFailed() {
	if m == nil {
		return
	}
	m.probesFailed.Add(1)
}

func (m *Metrics) BackoffScheduled() {
	if m == nil {
		return
	}
	m.backoffQueued.Add(1)
}

func (m *Metrics) LiveResponse() {
	if m == nil {
		return
	}
	m.liveResponses.Add(1)
}

// DemoResponse records a synthesized response; fellBack marks a live attempt
// that failed first.
func (m *Metrics) DemoResponse(fellBack bool) {
	if m == nil {
		return
	}
	m.demoResponses.Add(1)
	if fellBack {
		m.fallbacks.Add(1)
	}
}

func (m *Metrics) StreamConnected() {
	if m == nil {
		return
	}
	m.streamConnects.Add(1)
}

func (m *Metrics) StreamReconnectScheduled() {
	if m == nil {
		return
	}
	m.streamReconnects.Add(1)
}

func (m *Metrics) StreamMalformed() {
	if m == nil {
		return
	}
	m.streamMalformed.Add(1)
}

func (m *Metrics) StreamSent() {
	if m == nil {
		return
	}
	m.streamSent.Add(1)
}

// StreamReceived counts a decoded frame by type; known=false also bumps the
// unknown counter.
func (m *Metrics) StreamReceived(msgType string, known bool) {
	if m == nil {
		return
	}
	if !known {
		m.streamUnknown.Add(1)
	}
	m.mu.Lock()
	m.received[msgType]++
	m.mu.Unlock()
}

// HTTPServed counts one gateway request; 5xx statuses also count as errors.
func (m *Metrics) HTTPServed(status int) {
	if m == nil {
		return
	}
	m.httpRequests.Add(1)
	if status >= 500 {
		m.httpErrors.Add(1)
	}
}

func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	m.mu.Lock()
	byType := make(map[string]int64, len(m.received))
	for k, v := range m.received {
		byType[k] = v
	}
	m.mu.Unlock()

	uptime := time.Since(m.start)
	return map[string]any{
		"uptime_ms": uptime.Milliseconds(),
		"uptime":    uptime.String(),

		"health": map[string]any{
			"probes_ok":             m.probesOK.Load(),
			"probes_failed":         m.probesFailed.Load(),
			"backoff_scheduled":     m.backoffQueued.Load(),
			"last_probe_latency_ms": m.lastProbeMs.Load(),
		},

		"api": map[string]any{
			"live_responses": m.liveResponses.Load(),
			"demo_responses": m.demoResponses.Load(),
			"fallbacks":      m.fallbacks.Load(),
		},

		"http": map[string]any{
			"requests":      m.httpRequests.Load(),
			"server_errors": m.httpErrors.Load(),
		},

		"stream": map[string]any{
			"connects":             m.streamConnects.Load(),
			"reconnects_scheduled": m.streamReconnects.Load(),
			"malformed_frames":     m.streamMalformed.Load(),
			"unknown_frames":       m.streamUnknown.Load(),
			"sent":                 m.streamSent.Load(),
			"received_by_type":     byType,
		},
	}
}
