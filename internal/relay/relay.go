// Package relay pushes live-channel frames and connection changes to
// browsers over server-sent events.
package relay

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/live"
	"github.com/dgnsrekt/quantora_dash/internal/poller"
)

// Relay forwards events from the dashboard's sources into a Broker.
type Relay struct {
	broker *Broker
}

func New(broker *Broker) *Relay {
	return &Relay{broker: broker}
}

// AttachLive forwards every dispatched live frame and every status change.
func (r *Relay) AttachLive(ch *live.Channel) {
	ch.OnFrame(func(_ string, raw json.RawMessage) {
		r.broker.Publish(Event{Kind: KindLive, Payload: string(raw)})
	})
	ch.OnStatus(func(s live.Status, label string) {
		r.publishJSON(KindStatus, struct {
			Status live.Status `json:"status"`
			Label  string      `json:"label"`
			At     time.Time   `json:"at"`
		}{s, label, time.Now().UTC()})
	})
}

// AttachMonitor forwards backend availability flips.
func (r *Relay) AttachMonitor(m *apiclient.Monitor) {
	m.OnChange(func(s apiclient.ConnectionStatus) {
		r.publishJSON(KindConnection, s)
	})
}

// AttachPoller forwards every refreshed surface.
func (r *Relay) AttachPoller(p *poller.Poller) {
	p.OnUpdate(func(e poller.Entry) {
		r.publishJSON(KindSurface, e)
	})
}

func (r *Relay) publishJSON(kind string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("relay: marshal event", "kind", kind, "error", err)
		return
	}
	r.broker.Publish(Event{Kind: kind, Payload: string(data)})
}
