// Package poller refreshes each dashboard surface on its own interval and
// keeps the latest response for it.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/config"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
)

// ErrUnknownSurface is returned for a surface name that is not configured.
var ErrUnknownSurface = errors.New("poller: unknown surface")

// Fetcher is the part of the façade the poller needs.
type Fetcher interface {
	Get(ctx context.Context, endpoint string) apiclient.Response
}

// Entry is the latest state of one surface.
type Entry struct {
	Name      string             `json:"name"`
	Endpoint  string             `json:"endpoint"`
	Interval  string             `json:"interval"`
	Response  apiclient.Response `json:"response"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Fetches   int                `json:"fetches"`
}

// Poller owns one repeating timer per surface.
type Poller struct {
	fetcher  Fetcher
	surfaces []config.Surface
	sched    timers.Scheduler

	mu       sync.RWMutex
	group    *timers.Group
	latest   map[string]*Entry
	onUpdate []func(Entry)
}

func New(fetcher Fetcher, surfaces []config.Surface, sched timers.Scheduler) *Poller {
	if sched == nil {
		sched = timers.Real{}
	}
	latest := make(map[string]*Entry, len(surfaces))
	for _, s := range surfaces {
		latest[s.Name] = &Entry{Name: s.Name, Endpoint: s.Endpoint, Interval: s.Interval().String()}
	}
	return &Poller{fetcher: fetcher, surfaces: surfaces, sched: sched, latest: latest}
}

// OnUpdate registers fn to receive every fresh entry.
func (p *Poller) OnUpdate(fn func(Entry)) {
	p.mu.Lock()
	p.onUpdate = append(p.onUpdate, fn)
	p.mu.Unlock()
}

// Start fetches every surface once, then on its interval, until Stop or
// until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.group != nil {
		p.mu.Unlock()
		return
	}
	g := timers.NewGroup(p.sched)
	p.group = g
	p.mu.Unlock()

	context.AfterFunc(ctx, p.Stop)
	for _, s := range p.surfaces {
		s := s // per-iteration copy; go directive predates Go 1.22 loopvar semantics
		p.fetch(ctx, s)
		g.Every(s.Interval(), func() { p.fetch(ctx, s) })
	}
	slog.Info("poller started", "surfaces", len(p.surfaces))
}

// Stop releases every surface timer.
func (p *Poller) Stop() {
	p.mu.Lock()
	g := p.group
	p.group = nil
	p.mu.Unlock()
	if g != nil {
		g.Close()
	}
}

// Refresh refetches one surface immediately.
func (p *Poller) Refresh(ctx context.Context, name string) (Entry, error) {
	for _, s := range p.surfaces {
		if s.Name == name {
			return p.fetch(ctx, s), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSurface, name)
}

// Snapshot returns the latest entry for name.
func (p *Poller) Snapshot(name string) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.latest[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// All returns every surface's latest entry in configured order.
func (p *Poller) All() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, 0, len(p.surfaces))
	for _, s := range p.surfaces {
		out = append(out, *p.latest[s.Name])
	}
	return out
}

func (p *Poller) fetch(ctx context.Context, s config.Surface) Entry {
	resp := p.fetcher.Get(ctx, s.Endpoint)

	p.mu.Lock()
	e := p.latest[s.Name]
	e.Response = resp
	e.FetchedAt = time.Now()
	e.Fetches++
	out := *e
	fns := p.onUpdate
	p.mu.Unlock()

	slog.Debug("surface refreshed", "surface", s.Name, "demo", resp.IsDemo)
	for _, fn := range fns {
		fn(out)
	}
	return out
}
