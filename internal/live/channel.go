// Package live maintains the streaming connection to the backend's
// real-time feed and routes its messages by type.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/timers"
	"github.com/dgnsrekt/quantora_dash/internal/types"
)

// serverTypes are the message types the backend sends.
var serverTypes = map[string]bool{
	types.MsgConnectionEstablished: true,
	types.MsgPatternDiscovered:     true,
	types.MsgAIPerformanceUpdate:   true,
	types.MsgSystemHealthUpdate:    true,
	types.MsgPong:                  true,
	types.MsgStatusResponse:        true,
}

// ErrNotConnected is returned by Send while no connection is open.
var ErrNotConnected = errors.New("live: websocket not connected")

// Status is the channel's connection state.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
	// Error is transient: it is reported, then the close that follows moves
	// the channel back to Disconnected.
	Error
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "disconnected"
	}
}

// Label is the text shown next to the stream indicator.
func (s Status) Label() string {
	switch s {
	case Connecting:
		return "Connecting to AI stream"
	case Connected:
		return "AI stream active"
	case Error:
		return "Connection error"
	default:
		return "Disconnected"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "disconnected":
		*s = Disconnected
	case "connecting":
		*s = Connecting
	case "connected":
		*s = Connected
	case "error":
		*s = Error
	default:
		return fmt.Errorf("live: unknown status %q", b)
	}
	return nil
}

// Handler receives the raw JSON of one message.
type Handler func(raw json.RawMessage)

// Config controls the channel.
type Config struct {
	URL            string
	ReconnectDelay time.Duration
	DialTimeout    time.Duration
	LogSize        int
}

// Info is a point-in-time view of the channel.
type Info struct {
	Status        Status `json:"status"`
	Label         string `json:"label"`
	URL           string `json:"url"`
	AutoReconnect bool   `json:"autoReconnect"`
}

// Channel is a self-healing websocket client. After any close it redials
// after a fixed delay, forever, until Stop or a Toggle that disconnects.
type Channel struct {
	cfg     Config
	sched   timers.Scheduler
	metrics *metrics.Metrics
	log     *activityLog

	mu        sync.Mutex
	ctx       context.Context
	timers    *timers.Group
	conn      net.Conn
	gen       uint64
	status    Status
	autoRetry bool

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handlers  map[string][]Handler
	frameFns  []func(msgType string, raw json.RawMessage)
	statusFns []func(Status, string)
}

// NewChannel creates a disconnected channel. Nothing is dialed until Start.
func NewChannel(cfg Config, sched timers.Scheduler, m *metrics.Metrics) *Channel {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if sched == nil {
		sched = timers.Real{}
	}
	return &Channel{
		cfg:      cfg,
		sched:    sched,
		metrics:  m,
		log:      newActivityLog(cfg.LogSize),
		handlers: make(map[string][]Handler),
	}
}

// Handle registers fn for messages of the given type.
func (c *Channel) Handle(msgType string, fn Handler) {
	c.handlerMu.Lock()
	c.handlers[msgType] = append(c.handlers[msgType], fn)
	c.handlerMu.Unlock()
}

// OnFrame registers fn to see every dispatched message, after its handlers.
// Server message types are dispatched even when no handler is registered.
func (c *Channel) OnFrame(fn func(msgType string, raw json.RawMessage)) {
	c.handlerMu.Lock()
	c.frameFns = append(c.frameFns, fn)
	c.handlerMu.Unlock()
}

// OnStatus registers fn to be told about every status change.
func (c *Channel) OnStatus(fn func(Status, string)) {
	c.handlerMu.Lock()
	c.statusFns = append(c.statusFns, fn)
	c.handlerMu.Unlock()
}

// OnConnectionEstablished registers fn for the server greeting.
func (c *Channel) OnConnectionEstablished(fn func(types.ConnectionEstablished)) {
	handleTyped(c, types.MsgConnectionEstablished, fn)
}

// OnPatternDiscovered registers fn for newly discovered patterns.
func (c *Channel) OnPatternDiscovered(fn func(types.PatternDiscovered)) {
	handleTyped(c, types.MsgPatternDiscovered, fn)
}

// OnAIPerformance registers fn for engine performance updates.
func (c *Channel) OnAIPerformance(fn func(types.AIPerformanceUpdate)) {
	handleTyped(c, types.MsgAIPerformanceUpdate, fn)
}

// OnSystemHealth registers fn for system health updates.
func (c *Channel) OnSystemHealth(fn func(types.SystemHealthUpdate)) {
	handleTyped(c, types.MsgSystemHealthUpdate, fn)
}

func handleTyped[T any](c *Channel, msgType string, fn func(T)) {
	c.Handle(msgType, func(raw json.RawMessage) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			c.metrics.StreamMalformed()
			c.log.add(LogError, fmt.Sprintf("Malformed %s message: %v", msgType, err))
			slog.Warn("live message decode failed", "type", msgType, "error", err)
			return
		}
		fn(v)
	})
}

// Start connects and keeps the channel connected until ctx is done or Stop
// is called. It returns once the first dial attempt has finished.
func (c *Channel) Start(ctx context.Context) {
	c.mu.Lock()
	if c.timers == nil {
		c.timers = timers.NewGroup(c.sched)
	}
	c.ctx = ctx
	c.autoRetry = true
	c.mu.Unlock()

	context.AfterFunc(ctx, c.Stop)
	c.connect()
}

// Connect dials now if no connection is open, re-enabling auto reconnect.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.ctx == nil {
		c.mu.Unlock()
		return
	}
	open := c.conn != nil || c.status == Connecting
	c.autoRetry = true
	c.mu.Unlock()
	if !open {
		c.connect()
	}
}

// Toggle closes an open connection without scheduling a reconnect, or
// connects when none is open.
func (c *Channel) Toggle() {
	c.mu.Lock()
	open := c.conn != nil
	c.mu.Unlock()
	if open {
		c.disconnect("Disconnected by user")
		return
	}
	c.Connect()
}

// Stop closes the connection and releases the reconnect timer.
func (c *Channel) Stop() {
	c.mu.Lock()
	g := c.timers
	c.timers = nil
	c.mu.Unlock()
	if g != nil {
		g.Close()
	}
	c.disconnect("")
}

func (c *Channel) disconnect(note string) {
	c.mu.Lock()
	c.autoRetry = false
	conn := c.conn
	c.conn = nil
	c.gen++
	changed := c.status != Disconnected
	c.status = Disconnected
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if note != "" {
		c.log.add(LogSystem, note)
	}
	if changed {
		c.notifyStatus(Disconnected)
	}
}

// State reports the current status.
func (c *Channel) State() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Info reports status details for the UI.
func (c *Channel) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Info{
		Status:        c.status,
		Label:         c.status.Label(),
		URL:           c.cfg.URL,
		AutoReconnect: c.autoRetry,
	}
}

// Log returns the activity log, oldest entry first.
func (c *Channel) Log() []LogEntry {
	return c.log.snapshot()
}

// ClearLog empties the activity log.
func (c *Channel) ClearLog() {
	c.log.clear()
}

func (c *Channel) connect() {
	c.mu.Lock()
	ctx := c.ctx
	if ctx == nil || ctx.Err() != nil || c.conn != nil || c.status == Connecting {
		c.mu.Unlock()
		return
	}
	c.status = Connecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	c.notifyStatus(Connecting)

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	conn, br, _, err := ws.Dial(dialCtx, c.cfg.URL)
	cancel()
	if err == nil && br != nil {
		// Frames sent right after the handshake may already be buffered.
		conn = &bufferedConn{Conn: conn, r: br}
	}
	if err != nil {
		slog.Debug("live dial failed", "url", c.cfg.URL, "error", err)
		c.log.add(LogError, fmt.Sprintf("Connection error: %v", err))
		c.closed(gen, true)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		// Stopped or toggled while dialing.
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.status = Connected
	c.mu.Unlock()

	c.metrics.StreamConnected()
	c.log.add(LogSystem, "Connected to AI stream")
	slog.Info("live stream connected", "url", c.cfg.URL)
	c.notifyStatus(Connected)

	go c.readLoop(conn, gen)
}

func (c *Channel) readLoop(conn net.Conn, gen uint64) {
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			if !c.current(gen) {
				return
			}
			clean := isCleanClose(err)
			if !clean {
				c.log.add(LogError, fmt.Sprintf("Connection error: %v", err))
			}
			slog.Debug("live read loop exit", "clean", clean, "error", err)
			c.closed(gen, !clean)
			return
		}
		c.dispatch(data)
	}
}

type bufferedConn struct {
	net.Conn
	r io.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (c *Channel) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

func isCleanClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		return closed.Code == ws.StatusNormalClosure || closed.Code == ws.StatusGoingAway
	}
	return false
}

// closed moves a connection generation to Disconnected and, unless the
// close was requested, schedules exactly one reconnect.
func (c *Channel) closed(gen uint64, withError bool) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	if withError {
		c.status = Error
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if withError {
		c.notifyStatus(Error)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.status = Disconnected
	retry := c.autoRetry && c.timers != nil
	g := c.timers
	c.mu.Unlock()

	c.log.add(LogSystem, "Disconnected from AI stream")
	c.notifyStatus(Disconnected)

	if retry {
		c.metrics.StreamReconnectScheduled()
		g.AfterFunc(c.cfg.ReconnectDelay, c.reconnect)
	}
}

func (c *Channel) reconnect() {
	c.mu.Lock()
	retry := c.autoRetry
	c.mu.Unlock()
	if retry {
		slog.Debug("live stream reconnecting", "url", c.cfg.URL)
		c.connect()
	}
}

func (c *Channel) dispatch(data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		c.metrics.StreamMalformed()
		c.log.add(LogError, "Malformed message dropped")
		slog.Debug("live frame not JSON", "error", err)
		return
	}

	c.handlerMu.RLock()
	hs := c.handlers[env.Type]
	frameFns := c.frameFns
	c.handlerMu.RUnlock()

	known := len(hs) > 0 || serverTypes[env.Type]
	c.metrics.StreamReceived(env.Type, known)
	if !known {
		slog.Debug("live message type unhandled", "type", env.Type)
		return
	}

	raw := json.RawMessage(data)
	c.log.add(LogReceived, env.Type)
	if env.Type == types.MsgConnectionEstablished {
		c.greeted()
	}
	for _, h := range hs {
		h(raw)
	}
	for _, fn := range frameFns {
		fn(env.Type, raw)
	}
}

// greeted re-asserts Connected when the server's greeting arrives.
func (c *Channel) greeted() {
	c.mu.Lock()
	connected := c.status == Connected
	c.mu.Unlock()
	if !connected {
		return
	}
	c.log.add(LogSystem, "AI stream active")
	c.notifyStatus(Connected)
}

func (c *Channel) notifyStatus(s Status) {
	c.handlerMu.RLock()
	fns := c.statusFns
	c.handlerMu.RUnlock()
	for _, fn := range fns {
		fn(s, s.Label())
	}
}

// Send marshals payload and writes it as one text frame.
func (c *Channel) Send(payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.add(LogError, "Error: WebSocket not connected")
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("live: marshal: %w", err)
	}

	c.writeMu.Lock()
	err = wsutil.WriteClientText(conn, data)
	c.writeMu.Unlock()
	if err != nil {
		c.log.add(LogError, fmt.Sprintf("Send failed: %v", err))
		return fmt.Errorf("live: send: %w", err)
	}

	c.metrics.StreamSent()
	c.log.add(LogSent, string(data))
	return nil
}

// SendText sends a user-typed message.
func (c *Channel) SendText(content string) error {
	return c.Send(types.OutgoingText{
		Type:      types.MsgText,
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Ping asks the backend for a pong.
func (c *Channel) Ping() error {
	now := time.Now()
	return c.Send(types.Ping{
		Type:      types.MsgPing,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	})
}

// RequestStatus asks the backend for a status_response.
func (c *Channel) RequestStatus() error {
	return c.Send(map[string]string{"type": types.MsgRequestStatus})
}
