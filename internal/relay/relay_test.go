package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/config"
	"github.com/dgnsrekt/quantora_dash/internal/live"
	"github.com/dgnsrekt/quantora_dash/internal/poller"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

func TestBrokerDropsForFullSubscriber(t *testing.T) {
	b := NewBroker()
	id, _, ch := b.Subscribe(0)
	for i := 0; i < subscriberBufSize+10; i++ {
		b.Publish(Event{Kind: KindLive, Payload: "{}"})
	}
	if got := len(ch); got != subscriberBufSize {
		t.Fatalf("buffered = %d; want %d", got, subscriberBufSize)
	}
	if got := b.Dropped(); got != 10 {
		t.Fatalf("Dropped() = %d; want 10", got)
	}
	b.Unsubscribe(id)
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d; want 0", b.ClientCount())
	}
}

func TestBrokerBacklog(t *testing.T) {
	b := NewBroker()
	b.Publish(Event{Kind: KindStatus, Payload: `"connecting"`})
	b.Publish(Event{Kind: KindLive, Payload: `{"n":1}`})
	b.Publish(Event{Kind: KindStatus, Payload: `"connected"`})

	_, latest, _ := b.Subscribe(0)
	if len(latest) != 2 || latest[0].ID != 2 || latest[1].ID != 3 {
		t.Fatalf("latest backlog = %+v; want IDs [2 3]", latest)
	}

	_, missed, _ := b.Subscribe(1)
	if len(missed) != 2 || missed[0].Kind != KindLive || missed[1].Payload != `"connected"` {
		t.Fatalf("resume backlog = %+v; want events 2 and 3", missed)
	}
}

func TestBrokerHistoryIsBounded(t *testing.T) {
	b := NewBroker()
	for i := 0; i < historySize+5; i++ {
		b.Publish(Event{Kind: KindLive, Payload: "{}"})
	}
	_, missed, _ := b.Subscribe(1)
	if len(missed) != historySize {
		t.Fatalf("len(backlog) = %d; want %d", len(missed), historySize)
	}
	if missed[0].ID != 6 {
		t.Fatalf("oldest retained ID = %d; want 6", missed[0].ID)
	}
}

func TestSSEHandlerFiltersKinds(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?kinds=status", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q; want text/event-stream", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Publish(Event{Kind: KindLive, Payload: `{"type":"pattern_discovered"}`})
	b.Publish(Event{Kind: KindStatus, Payload: `{"status":"connected"}`})

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "retry:") || strings.HasPrefix(line, ":") {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 {
			break
		}
	}
	want := []string{"id: 2", "event: status", `data: {"status":"connected"}`}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("stream = %q; want %q", lines, want)
	}
}

type okFetcher struct{}

func (okFetcher) Get(context.Context, string) apiclient.Response {
	return apiclient.Response{Data: json.RawMessage(`{"ok":true}`), Success: true}
}

func TestParseKinds(t *testing.T) {
	if got := parseKinds(""); got != nil {
		t.Fatalf("parseKinds(\"\") = %v; want nil", got)
	}
	got := parseKinds(" live, ,status ")
	if len(got) != 2 || !got[KindLive] || !got[KindStatus] {
		t.Fatalf("parseKinds() = %v; want live and status", got)
	}
}

func TestAttachPollerPublishesSurface(t *testing.T) {
	b := NewBroker()
	_, _, ch := b.Subscribe(0)

	p := poller.New(okFetcher{}, []config.Surface{{Name: "system", Endpoint: "/system/status", IntervalMS: 30000}}, timers.NewManual())
	New(b).AttachPoller(p)
	if _, err := p.Refresh(context.Background(), "system"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Kind != KindSurface {
			t.Fatalf("Kind = %q; want %q", evt.Kind, KindSurface)
		}
		var e poller.Entry
		if err := json.Unmarshal([]byte(evt.Payload), &e); err != nil {
			t.Fatalf("payload decode error = %v", err)
		}
		if e.Name != "system" || e.Fetches != 1 {
			t.Fatalf("entry = %+v; want first system fetch", e)
		}
	default:
		t.Fatal("no event published")
	}
}

func TestAttachLiveRelaysServerFramesAndStatus(t *testing.T) {
	frames := []string{
		`{"type":"connection_established","client_id":"c1"}`,
		`{"type":"pattern_discovered","pattern":{"id":"p1","level":3}}`,
		`{"type":"ai_performance_update","engines":[]}`,
		`{"type":"system_health_update","health":{"overall_score":98}}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := wsutil.WriteServerText(conn, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, err := wsutil.ReadClientText(conn); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := NewBroker()
	_, _, events := b.Subscribe(0)

	ch := live.NewChannel(live.Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")}, timers.NewManual(), nil)
	New(b).AttachLive(ch)
	// Same handler set as the dashboard binary: two of the four types have none.
	ch.OnConnectionEstablished(func(types.ConnectionEstablished) {})
	ch.OnPatternDiscovered(func(types.PatternDiscovered) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch.Start(ctx)
	defer ch.Stop()

	var liveTypes []string
	var sawConnected bool
	timeout := time.After(3 * time.Second)
	for len(liveTypes) < len(frames) || !sawConnected {
		select {
		case evt := <-events:
			switch evt.Kind {
			case KindLive:
				var env struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal([]byte(evt.Payload), &env); err != nil {
					t.Fatalf("live payload %q: %v", evt.Payload, err)
				}
				liveTypes = append(liveTypes, env.Type)
			case KindStatus:
				sawConnected = sawConnected || strings.Contains(evt.Payload, `"status":"connected"`)
			}
		case <-timeout:
			t.Fatalf("relayed live types = %v, connected status = %v; want all four and connected", liveTypes, sawConnected)
		}
	}

	want := "connection_established,pattern_discovered,ai_performance_update,system_health_update"
	if got := strings.Join(liveTypes, ","); got != want {
		t.Fatalf("live events = %s; want %s", got, want)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestAttachMonitorRelaysConnectionFlip(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"status":"healthy"}`)),
		}, nil
	})}
	mon := apiclient.NewMonitor(apiclient.MonitorConfig{BaseURL: "http://backend.test", MaxReconnectAttempts: 5}, client, timers.NewManual(), nil)

	b := NewBroker()
	_, _, events := b.Subscribe(0)
	New(b).AttachMonitor(mon)

	if !mon.CheckHealth(context.Background()) {
		t.Fatal("CheckHealth() = false; want true")
	}

	select {
	case evt := <-events:
		if evt.Kind != KindConnection {
			t.Fatalf("Kind = %q; want %q", evt.Kind, KindConnection)
		}
		var got apiclient.ConnectionStatus
		if err := json.Unmarshal([]byte(evt.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if !got.IsConnected || got.IsDemoMode {
			t.Fatalf("status = %+v; want connected, not demo", got)
		}
	default:
		t.Fatal("no connection event published")
	}

	// A repeat success is not a flip.
	mon.CheckHealth(context.Background())
	if len(events) != 0 {
		t.Fatalf("events after repeat success = %d; want 0", len(events))
	}
}
