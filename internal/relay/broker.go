package relay

import (
	"sync"
	"sync/atomic"
)

const (
	subscriberBufSize = 256
	historySize       = 128
)

// Event kinds published to browsers.
const (
	KindLive       = "live"
	KindStatus     = "status"
	KindConnection = "connection"
	KindSurface    = "surface"
)

// Event is a single server-sent event. ID is assigned by Publish and
// increases by one per event.
type Event struct {
	ID      int64
	Kind    string
	Payload string
}

// Broker fans out events to subscribed SSE clients and keeps a short
// history so a reconnecting browser can resume from Last-Event-ID.
type Broker struct {
	mu          sync.Mutex
	subscribers map[int64]chan Event
	nextSub     int64
	seq         int64
	history     []Event // ring, oldest first once full
	dropped     atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
		history:     make([]Event, 0, historySize),
	}
}

// Subscribe registers a new client and returns the events it missed.
// With lastID > 0 the backlog is every retained event after lastID. With
// lastID == 0 it is the latest event of each kind, so a fresh page starts
// with current state.
func (b *Broker) Subscribe(lastID int64) (int64, []Event, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSub++
	id := b.nextSub
	ch := make(chan Event, subscriberBufSize)
	b.subscribers[id] = ch
	return id, b.backlog(lastID), ch
}

func (b *Broker) backlog(lastID int64) []Event {
	var out []Event
	if lastID > 0 {
		for _, evt := range b.history {
			if evt.ID > lastID {
				out = append(out, evt)
			}
		}
		return out
	}
	seen := make(map[string]bool)
	for i := len(b.history) - 1; i >= 0; i-- {
		evt := b.history[i]
		if seen[evt.Kind] {
			continue
		}
		seen[evt.Kind] = true
		out = append([]Event{evt}, out...)
	}
	return out
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish stamps evt with the next ID and sends it to every subscriber
// without blocking. It returns the stamped event.
func (b *Broker) Publish(evt Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	evt.ID = b.seq
	if len(b.history) == historySize {
		copy(b.history, b.history[1:])
		b.history = b.history[:historySize-1]
	}
	b.history = append(b.history, evt)
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
	return evt
}

func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Dropped counts events not delivered to a full subscriber buffer.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}
