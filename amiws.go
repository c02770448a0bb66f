// Package amiws is a transport client for an AMI (Asterisk Manager
// Interface) bridge speaking JSON over WebSocket: one multiplexed
// connection, ActionID-correlated request/response, demultiplexed
// unsolicited events, and bounded auto-reconnect.
package amiws

import (
	"context"

	"github.com/voxbridge/go-amiws/pkg/ami"
	"github.com/voxbridge/go-amiws/pkg/client"
)

// Re-export core types.
type (
	Client          = client.Client
	Option          = client.Option
	Options         = client.Options
	ConnectionState = client.ConnectionState
	EventKind       = client.EventKind

	Message       = ami.Message
	Action        = ami.Action
	Error         = ami.Error
	ErrorCode     = ami.ErrorCode
	ResponseError = ami.ResponseError
	PresenceState = ami.PresenceState
)

// Re-export connection states.
const (
	StateDisconnected = client.StateDisconnected
	StateConnecting   = client.StateConnecting
	StateConnected    = client.StateConnected
	StateReconnecting = client.StateReconnecting
)

// Re-export error codes.
const (
	CodeNotConnected   = ami.CodeNotConnected
	CodeDisconnected   = ami.CodeDisconnected
	CodeActionTimeout  = ami.CodeActionTimeout
	CodeTransportError = ami.CodeTransportError
)

// Re-export option constructors so the root package is usable alone.
var (
	WithLogger               = client.WithLogger
	WithDialOptions          = client.WithDialOptions
	WithActionTimeout        = client.WithActionTimeout
	WithWriteTimeout         = client.WithWriteTimeout
	WithAutoReconnect        = client.WithAutoReconnect
	WithReconnectDelay       = client.WithReconnectDelay
	WithMaxReconnectAttempts = client.WithMaxReconnectAttempts
)

// New creates an unconnected client for the given bridge URL.
func New(urlStr string, opts ...Option) *Client {
	return client.New(urlStr, opts...)
}

// Dial creates a client and connects it immediately.
func Dial(ctx context.Context, urlStr string, opts ...Option) (*Client, error) {
	return client.Dial(ctx, urlStr, opts...)
}

// NewAction returns an Action with the Action field set.
func NewAction(name string) Action {
	return ami.NewAction(name)
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return ami.IsCode(err, code)
}

// DefaultOptions returns client options populated with library
// defaults.
func DefaultOptions() Options {
	return client.DefaultOptions()
}
