// Package client implements the AMI transport client: one multiplexed
// WebSocket connection to a bridge, request/response correlation by
// ActionID, demultiplexing of unsolicited events, and supervised
// reconnection.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

const (
	// DefaultActionTimeout bounds how long Send waits for a correlated
	// response unless overridden per client or per call.
	DefaultActionTimeout = 10 * time.Second
	// DefaultReconnectDelay is the fixed wait between reconnection
	// attempts after an unexpected transport loss.
	DefaultReconnectDelay = 5 * time.Second
	// DefaultMaxReconnectAttempts bounds the reconnection supervisor.
	DefaultMaxReconnectAttempts = 5

	defaultWriteTimeout = 5 * time.Second
	defaultReadLimit    = 1024 * 1024 // matches the bridge's frame cap
	busCapacity         = 32
)

// ConnectionState tracks the lifecycle of the single connection owned
// by a Client.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type clientConfig struct {
	logger               *slog.Logger
	dialOptions          *websocket.DialOptions
	actionTimeout        time.Duration
	writeTimeout         time.Duration
	autoReconnect        bool
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// sendOutcome is the single settlement of a pending action.
type sendOutcome struct {
	msg *ami.Message
	err error
}

// pendingAction is owned by the correlator. Membership in
// Client.pending is the settlement arbiter: whoever removes the entry
// under the mutex delivers the one and only outcome.
type pendingAction struct {
	id   string
	name string
	done chan sendOutcome // buffered 1
}

// Client is a transport client for an AMI-over-WebSocket bridge.
// A Client owns at most one connection at a time; all lifecycle
// methods and Send are safe for concurrent use.
type Client struct {
	config clientConfig
	urlStr string

	idPrefix string
	seq      atomic.Uint64

	mu            sync.Mutex
	state         ConnectionState
	conn          *websocket.Conn
	pending       map[string]*pendingAction
	attempts      int
	manualClose   bool
	closed        bool
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	pumpDone      chan struct{}

	writeMu sync.Mutex

	bus *eventBus
}

// New creates a Client for the given bridge URL. It does not dial;
// call Connect.
func New(urlStr string, opts ...Option) *Client {
	c := &Client{
		config: clientConfig{
			logger:               slog.Default(),
			actionTimeout:        DefaultActionTimeout,
			writeTimeout:         defaultWriteTimeout,
			autoReconnect:        true,
			reconnectDelay:       DefaultReconnectDelay,
			maxReconnectAttempts: DefaultMaxReconnectAttempts,
		},
		urlStr:   urlStr,
		idPrefix: uuid.NewString()[:8],
		state:    StateDisconnected,
		pending:  make(map[string]*pendingAction),
		bus:      newEventBus(busCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial is a convenience constructor that creates a Client and connects
// it immediately.
func Dial(ctx context.Context, urlStr string, opts ...Option) (*Client, error) {
	c := New(urlStr, opts...)
	if err := c.Connect(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// URL returns the bridge URL this client dials.
func (c *Client) URL() string { return c.urlStr }

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PendingActions returns the number of in-flight actions. It is zero
// immediately after any transition into Disconnected.
func (c *Client) PendingActions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// nextActionID returns a correlation token unique for the lifetime of
// the process: per-instance prefix, monotonic counter, timestamp.
// Identifiers are never reused, so a late response for a timed-out
// action can never be mis-delivered to a newer one.
func (c *Client) nextActionID() string {
	return fmt.Sprintf("%s-%d-%d", c.idPrefix, c.seq.Add(1), time.Now().UnixMilli())
}

// Connect opens the connection. It is idempotent: while Connected,
// Connecting or Reconnecting it returns immediately without opening a
// second socket. A dial failure is reported as *ami.Error with
// CodeTransportError.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("client: permanently closed")
	}
	switch c.state {
	case StateConnected, StateConnecting, StateReconnecting:
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.manualClose = false
	c.attempts = 0 // a manual connect starts a fresh retry budget
	c.sessionCtx, c.sessionCancel = context.WithCancel(context.Background())
	c.mu.Unlock()

	return c.dial(ctx)
}

// dial performs one connection attempt and, on success, installs the
// connection and starts the read pump. Used by Connect and by the
// reconnection supervisor.
func (c *Client) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.config.actionTimeout)
	conn, _, err := websocket.Dial(dialCtx, c.urlStr, c.config.dialOptions)
	cancel()
	if err != nil {
		c.mu.Lock()
		if c.state == StateConnecting {
			// Initial connect failed. Reconnect attempts keep the
			// Reconnecting state; the supervisor owns that path.
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		return ami.NewError(ami.CodeTransportError, fmt.Sprintf("dial %s: %v", c.urlStr, err))
	}
	conn.SetReadLimit(defaultReadLimit)

	c.mu.Lock()
	if c.manualClose || c.closed {
		c.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "client disconnected during dial")
		return ami.NewError(ami.CodeDisconnected, "disconnected while connecting")
	}
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.pumpDone = make(chan struct{})
	go c.readPump(c.sessionCtx, conn, c.pumpDone)
	c.mu.Unlock()

	c.config.logger.Debug("ami client connected", "url", c.urlStr)
	c.bus.publishConnected()
	return nil
}

// Disconnect closes the connection and settles every pending action
// with CodeDisconnected. It is idempotent, never triggers the
// reconnection supervisor, and does not return until the socket is
// closed and no pending actions remain.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateDisconnected && c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.manualClose = true
	if c.sessionCancel != nil {
		c.sessionCancel() // aborts any reconnect wait and the read pump
	}
	conn := c.conn
	c.conn = nil
	done := c.pumpDone
	c.pumpDone = nil
	pend := c.takePendingLocked()
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	if done != nil {
		<-done
	}
	c.failPending(pend, ami.NewError(ami.CodeDisconnected, "Manual disconnect"))
	c.config.logger.Debug("ami client disconnected", "reason", "manual")
	c.bus.publishDisconnected("Manual disconnect")
}

// Close disconnects and permanently shuts the client down, including
// its event bus. The client cannot be reconnected afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("client: already closed")
	}
	c.closed = true
	c.mu.Unlock()

	c.Disconnect()
	c.bus.shutdown()
	return nil
}

// takePendingLocked empties the registry and returns the entries.
// Caller holds c.mu.
func (c *Client) takePendingLocked() []*pendingAction {
	if len(c.pending) == 0 {
		return nil
	}
	out := make([]*pendingAction, 0, len(c.pending))
	for _, pa := range c.pending {
		out = append(out, pa)
	}
	c.pending = make(map[string]*pendingAction)
	return out
}

func (c *Client) failPending(pend []*pendingAction, err error) {
	for _, pa := range pend {
		pa.done <- sendOutcome{err: err}
	}
}

// Send sends an action and waits for the correlated response using the
// client's default action timeout.
func (c *Client) Send(ctx context.Context, act ami.Action) (*ami.Message, error) {
	return c.SendTimeout(ctx, act, c.config.actionTimeout)
}

// SendTimeout sends an action and waits for its response. Exactly one
// of three outcomes occurs: the correlated response arrives, the
// timeout fires (CodeActionTimeout, naming the action), or the
// connection is torn down first (CodeDisconnected). If the client is
// not Connected it fails immediately with CodeNotConnected without
// touching the transport.
func (c *Client) SendTimeout(ctx context.Context, act ami.Action, timeout time.Duration) (*ami.Message, error) {
	name := act.Name()
	if name == "" {
		return nil, fmt.Errorf("client: action is missing the %s field", ami.KeyAction)
	}
	if timeout <= 0 {
		timeout = c.config.actionTimeout
	}

	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return nil, ami.NewError(ami.CodeNotConnected, fmt.Sprintf("cannot send %s: not connected", name))
	}
	out := act.Clone()
	id := out.ID()
	if id == "" {
		id = c.nextActionID()
		out[ami.KeyActionID] = id
	}
	pa := &pendingAction{id: id, name: name, done: make(chan sendOutcome, 1)}
	c.pending[id] = pa
	conn := c.conn
	c.mu.Unlock()

	if err := c.write(ctx, conn, ami.NewActionMessage(out)); err != nil {
		c.abandon(pa)
		return nil, ami.NewError(ami.CodeTransportError, fmt.Sprintf("write %s: %v", name, err))
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-pa.done:
		return o.msg, o.err
	case <-timer.C:
		if o, settled := c.raceSettled(pa); settled {
			return o.msg, o.err
		}
		return nil, ami.NewError(ami.CodeActionTimeout, fmt.Sprintf("action %s timed out after %v", name, timeout))
	case <-ctx.Done():
		if o, settled := c.raceSettled(pa); settled {
			return o.msg, o.err
		}
		return nil, fmt.Errorf("client: action %s: %w", name, ctx.Err())
	}
}

// raceSettled resolves the timer-vs-response race. The registry is the
// single arbiter: if the entry is still registered the caller wins and
// removes it (a later response is dropped); if it is gone, a deliverer
// already wrote the outcome and we return it instead.
func (c *Client) raceSettled(pa *pendingAction) (sendOutcome, bool) {
	c.mu.Lock()
	_, registered := c.pending[pa.id]
	if registered {
		delete(c.pending, pa.id)
	}
	c.mu.Unlock()
	if registered {
		return sendOutcome{}, false
	}
	return <-pa.done, true
}

// abandon removes a pending entry after a local failure, tolerating a
// concurrent teardown that already settled it.
func (c *Client) abandon(pa *pendingAction) {
	c.mu.Lock()
	delete(c.pending, pa.id)
	c.mu.Unlock()
}

func (c *Client) write(ctx context.Context, conn *websocket.Conn, msg *ami.Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, c.config.writeTimeout)
	defer cancel()
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsjson.Write(writeCtx, conn, msg)
}

// readPump reads frames from one connection until it fails or the
// session is cancelled, then hands off to connLost.
func (c *Client) readPump(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	var readErr error
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			readErr = err
			break
		}
		var msg ami.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// One malformed frame must not terminate the connection.
			c.config.logger.Warn("discarding malformed frame", "err", err, "frame", string(data))
			continue
		}
		c.dispatch(&msg)
	}
	c.connLost(conn, readErr)
}

// dispatch routes one inbound frame: a frame whose ActionID matches a
// pending action settles that action regardless of its type tag and is
// not re-emitted; everything else goes to the event bus.
func (c *Client) dispatch(msg *ami.Message) {
	if id := msg.ActionID(); id != "" {
		c.mu.Lock()
		pa, ok := c.pending[id]
		if ok {
			delete(c.pending, id)
		}
		c.mu.Unlock()
		if ok {
			pa.done <- sendOutcome{msg: msg}
			return
		}
		// Late or unsolicited ActionID: the action already settled, so
		// the frame only reaches the observability channel below.
		c.config.logger.Debug("dropping response with no pending action", "action_id", id)
	}

	c.bus.publishMessage(msg)
	if ev := msg.Event(); ev != "" {
		c.bus.publishEvent(msg)
		if ev == ami.EventPresenceStateChange {
			c.bus.publishPresenceChange(msg)
		}
	}
}

// connLost runs when a read pump exits. Manual teardown is owned by
// Disconnect; anything else is an unexpected loss handled here.
func (c *Client) connLost(conn *websocket.Conn, readErr error) {
	c.mu.Lock()
	if c.conn != conn || c.manualClose || c.closed {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.pumpDone = nil
	pend := c.takePendingLocked()
	reconnect := c.config.autoReconnect
	if reconnect {
		c.state = StateReconnecting
	} else {
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	conn.Close(websocket.StatusAbnormalClosure, "connection lost")
	c.failPending(pend, ami.NewError(ami.CodeDisconnected, "connection lost"))

	reason := "Connection lost"
	if readErr != nil {
		reason = fmt.Sprintf("Connection lost: %v", readErr)
	}
	c.config.logger.Warn("ami connection lost", "err", readErr, "reconnect", reconnect)

	if reconnect {
		go c.reconnectLoop()
	} else {
		c.bus.publishDisconnected(reason)
	}
}
