package live

import (
	"fmt"
	"sync"
	"time"
)

// LogKind classifies an activity log entry.
type LogKind string

const (
	LogSystem   LogKind = "system"
	LogError    LogKind = "error"
	LogSent     LogKind = "sent"
	LogReceived LogKind = "received"
)

// LogEntry is one line of the user-visible activity log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Kind    LogKind   `json:"kind"`
	Message string    `json:"message"`
}

const (
	defaultLogSize  = 200
	maxMessageBytes = 512
)

// truncate cuts msg to maxBytes and notes the original size.
func truncate(msg string, maxBytes int) string {
	if maxBytes <= 0 || len(msg) <= maxBytes {
		return msg
	}
	return fmt.Sprintf("%s... (%d bytes)", msg[:maxBytes], len(msg))
}

// activityLog keeps the most recent entries, oldest first.
type activityLog struct {
	mu      sync.Mutex
	entries []LogEntry
	size    int
}

func newActivityLog(size int) *activityLog {
	if size <= 0 {
		size = defaultLogSize
	}
	return &activityLog{size: size}
}

func (l *activityLog) add(kind LogKind, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Time: time.Now(), Kind: kind, Message: truncate(msg, maxMessageBytes)})
	if over := len(l.entries) - l.size; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

func (l *activityLog) snapshot() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *activityLog) clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
