// Package testutil provides a mock AMI-over-WebSocket bridge and wait
// helpers for tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// ActionHandler inspects one inbound action and returns the reply to
// send, or nil to swallow the action.
type ActionHandler func(act ami.Action) *ami.Message

// Bridge is a mock bridge server. It accepts one WebSocket connection
// at a time, decodes inbound envelopes and feeds the carried action to
// the handler.
type Bridge struct {
	T      *testing.T
	Server *httptest.Server
	WsURL  string

	mu         sync.Mutex
	conn       *websocket.Conn
	connCancel context.CancelFunc
	connCount  int

	handlerMu sync.Mutex
	handler   ActionHandler
}

// NewBridge starts a mock bridge. handler may be nil; set it later
// with Handle. The server is closed via t.Cleanup.
func NewBridge(t *testing.T, handler ActionHandler) *Bridge {
	t.Helper()
	b := &Bridge{T: t, handler: handler}

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connCtx, connCancel := context.WithCancel(context.Background())

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			b.T.Logf("Bridge: accept error: %v", err)
			connCancel()
			return
		}
		b.mu.Lock()
		b.conn = conn
		b.connCancel = connCancel
		b.connCount++
		b.mu.Unlock()
		b.T.Logf("Bridge: client connected")

		defer func() {
			conn.Close(websocket.StatusNormalClosure, "bridge handler finished")
			b.mu.Lock()
			if b.conn == conn {
				b.conn = nil
			}
			b.mu.Unlock()
			connCancel()
		}()

		for {
			var env ami.Message
			if err := wsjson.Read(connCtx, conn, &env); err != nil {
				return
			}
			b.handlerMu.Lock()
			h := b.handler
			b.handlerMu.Unlock()
			if h == nil {
				continue
			}
			if reply := h(ami.Action(env.Data)); reply != nil {
				b.Send(reply)
			}
		}
	}))
	b.WsURL = "ws" + b.Server.URL[4:]

	t.Cleanup(b.Close)
	return b
}

// Handle replaces the action handler.
func (b *Bridge) Handle(h ActionHandler) {
	b.handlerMu.Lock()
	b.handler = h
	b.handlerMu.Unlock()
}

// Send writes one envelope to the connected client.
func (b *Bridge) Send(msg *ami.Message) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		b.T.Logf("Bridge: no active connection, dropping %s", msg.Type)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultWait)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

// SendRaw writes raw bytes as one text frame, for malformed-frame
// tests.
func (b *Bridge) SendRaw(data []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

// SendEvent pushes an unsolicited event frame with the given Event
// name and extra Data fields.
func (b *Bridge) SendEvent(name string, fields map[string]string) error {
	data := map[string]string{ami.KeyEvent: name}
	for k, v := range fields {
		data[k] = v
	}
	return b.Send(&ami.Message{Type: ami.TypeEvent, ServerID: 1, ServerName: "mock", Data: data})
}

// ConnCount reports how many connections the bridge has accepted.
func (b *Bridge) ConnCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connCount
}

// CloseCurrentConnection drops the active connection, simulating an
// unexpected transport loss. The listener stays up so the client can
// reconnect.
func (b *Bridge) CloseCurrentConnection() {
	b.mu.Lock()
	conn := b.conn
	cancel := b.connCancel
	b.conn = nil
	b.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusGoingAway, "bridge dropping connection")
	}
	if cancel != nil {
		cancel()
	}
}

// Close shuts the bridge down entirely; further dials fail.
func (b *Bridge) Close() {
	b.CloseCurrentConnection()
	b.Server.Close()
}

// SuccessReply builds a response envelope correlated to act, merging
// any extra Data fields.
func SuccessReply(act ami.Action, fields map[string]string) *ami.Message {
	data := map[string]string{
		ami.KeyActionID: act.ID(),
		ami.KeyResponse: ami.ResponseSuccess,
	}
	for k, v := range fields {
		data[k] = v
	}
	return &ami.Message{Type: ami.TypeResponse, ServerID: 1, ServerName: "mock", Data: data}
}

// ErrorReply builds a failure response correlated to act with the
// given backend message.
func ErrorReply(act ami.Action, message string) *ami.Message {
	return &ami.Message{Type: ami.TypeResponse, ServerID: 1, ServerName: "mock", Data: map[string]string{
		ami.KeyActionID: act.ID(),
		ami.KeyResponse: "Error",
		ami.KeyMessage:  message,
	}}
}
