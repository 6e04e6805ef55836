// Package notify pushes noteworthy dashboard events to an ntfy topic.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

// Priority follows ntfy's 1 (min) to 5 (max) scale.
type Priority int

const (
	PriorityLow     Priority = 2
	PriorityDefault Priority = 3
	PriorityHigh    Priority = 4
)

// Message is a single push notification.
type Message struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Send posts msg to endpoint as a plain-text ntfy publish.
func Send(ctx context.Context, client *http.Client, endpoint string, msg Message) error {
	if endpoint == "" {
		return errors.New("ntfy endpoint is empty")
	}
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(msg.Body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	if msg.Priority > 0 {
		req.Header.Set("Priority", strconv.Itoa(int(msg.Priority)))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}

// Notifier turns live events into push notifications. A zero MinLevel
// forwards every discovered pattern.
type Notifier struct {
	Endpoint string
	Client   *http.Client
	MinLevel int
}

// PatternDiscovered notifies about p unless its level is below MinLevel.
// It reports whether a notification was sent.
func (n *Notifier) PatternDiscovered(ctx context.Context, p types.PatternDiscovered) (bool, error) {
	if p.Pattern.Level < n.MinLevel {
		return false, nil
	}
	body := fmt.Sprintf("%s (level %d) by %s, predicted success %.1f%%",
		p.Pattern.Name, p.Pattern.Level, p.Pattern.CreatorAI, p.Pattern.PredictedSuccessRate)
	prio := PriorityDefault
	if p.Pattern.Level >= 5 {
		prio = PriorityHigh
	}
	err := Send(ctx, n.Client, n.Endpoint, Message{
		Title:    "Pattern discovered",
		Body:     body,
		Priority: prio,
		Tags:     []string{"sparkles"},
	})
	return err == nil, err
}

// BackendChanged notifies when the backend goes away or comes back.
func (n *Notifier) BackendChanged(ctx context.Context, s apiclient.ConnectionStatus) error {
	msg := Message{Title: "Backend reachable", Body: "Live data restored.", Priority: PriorityLow, Tags: []string{"white_check_mark"}}
	if !s.IsConnected {
		msg = Message{Title: "Backend unreachable", Body: "Dashboard switched to demo data.", Priority: PriorityDefault, Tags: []string{"warning"}}
	}
	return Send(ctx, n.Client, n.Endpoint, msg)
}
