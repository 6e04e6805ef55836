package timers

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback. Stop is idempotent.
type Handle interface {
	Stop()
}

// Scheduler runs callbacks after a delay or on a fixed interval.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle
}

// Real schedules on the wall clock.
type Real struct{}

func (Real) AfterFunc(d time.Duration, fn func()) Handle {
	t := time.AfterFunc(d, fn)
	return stopFunc(func() { t.Stop() })
}

func (Real) Every(d time.Duration, fn func()) Handle {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return &ticker{t: t, done: done}
}

type ticker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

func (k *ticker) Stop() {
	k.once.Do(func() {
		k.t.Stop()
		close(k.done)
	})
}

type stopFunc func()

func (f stopFunc) Stop() { f() }

// Group owns every handle created through it and releases them together.
// Once closed, new schedules are refused and return a no-op handle.
type Group struct {
	s Scheduler

	mu      sync.Mutex
	nextID  uint64
	handles map[uint64]Handle
	closed  bool
}

// NewGroup wraps s. A nil scheduler falls back to Real.
func NewGroup(s Scheduler) *Group {
	if s == nil {
		s = Real{}
	}
	return &Group{s: s, handles: make(map[uint64]Handle)}
}

// AfterFunc schedules fn once. The handle is forgotten when fn fires.
func (g *Group) AfterFunc(d time.Duration, fn func()) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return stopFunc(func() {})
	}
	g.nextID++
	id := g.nextID
	h := g.s.AfterFunc(d, func() {
		g.forget(id)
		fn()
	})
	g.handles[id] = h
	return stopFunc(func() {
		h.Stop()
		g.forget(id)
	})
}

// Every schedules fn on a fixed interval until stopped or the group closes.
func (g *Group) Every(d time.Duration, fn func()) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return stopFunc(func() {})
	}
	g.nextID++
	id := g.nextID
	h := g.s.Every(d, fn)
	g.handles[id] = h
	return stopFunc(func() {
		h.Stop()
		g.forget(id)
	})
}

// Pending reports how many handles are still live.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

// Close stops every outstanding handle.
func (g *Group) Close() {
	g.mu.Lock()
	hs := g.handles
	g.handles = make(map[uint64]Handle)
	g.closed = true
	g.mu.Unlock()

	for _, h := range hs {
		h.Stop()
	}
}

func (g *Group) forget(id uint64) {
	g.mu.Lock()
	delete(g.handles, id)
	g.mu.Unlock()
}
