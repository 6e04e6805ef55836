// Package demo synthesizes stand-in payloads for every dashboard endpoint so
// the UI always has something of the right shape to render.
package demo

import (
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/types"
)

// Endpoints with a built-in dataset.
const (
	EndpointHealth     = "/health"
	EndpointPatterns   = "/patterns/live"
	EndpointTournament = "/patterns/tournament"
	EndpointEvolution  = "/evolution/status"
	EndpointEngines    = "/ai/engines"
	EndpointSystem     = "/system/status"
	EndpointAlerts     = "/alerts/live"
)

// TimestampLayout is used for every generated timestamp string.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Context is what a generator may depend on.
type Context struct {
	Endpoint  string
	Now       time.Time
	Connected bool
}

// Generator builds the payload for one endpoint.
type Generator func(Context) any

// Registry maps endpoints to generators. Lookups are exact-match.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// NewRegistry returns a registry preloaded with the built-in datasets.
func NewRegistry() *Registry {
	r := &Registry{gens: make(map[string]Generator)}
	r.Register(EndpointHealth, func(Context) any { return Health() })
	r.Register(EndpointPatterns, func(Context) any { return LivePatterns() })
	r.Register(EndpointTournament, func(Context) any { return Tournament() })
	r.Register(EndpointEvolution, func(Context) any { return Evolution() })
	r.Register(EndpointEngines, func(Context) any { return AIEngines() })
	r.Register(EndpointSystem, func(c Context) any { return SystemStatus(c.Now, c.Connected) })
	r.Register(EndpointAlerts, func(c Context) any { return LiveAlerts(c.Now) })
	return r
}

// Register adds or replaces the generator for endpoint.
func (r *Registry) Register(endpoint string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[endpoint] = gen
}

// Has reports whether endpoint has a dedicated dataset.
func (r *Registry) Has(endpoint string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.gens[endpoint]
	return ok
}

// Endpoints lists registered endpoints in sorted order.
func (r *Registry) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.gens))
	for e := range r.gens {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Generate returns the dataset for c.Endpoint, or a generic payload naming
// the endpoint when none is registered. It never fails.
func (r *Registry) Generate(c Context) any {
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	r.mu.RLock()
	gen, ok := r.gens[c.Endpoint]
	r.mu.RUnlock()
	if !ok {
		return types.Generic{
			Message:   "Demo data active",
			Timestamp: c.Now.UTC().Format(TimestampLayout),
			Endpoint:  c.Endpoint,
		}
	}
	return gen(c)
}
