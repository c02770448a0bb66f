package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.config.logger = logger
		}
	}
}

// WithDialOptions sets custom websocket.DialOptions.
func WithDialOptions(opts *websocket.DialOptions) Option {
	return func(c *Client) {
		c.config.dialOptions = opts
	}
}

// WithActionTimeout sets the default timeout applied by Send. Tests
// pass short values here to assert timeout behavior deterministically.
func WithActionTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.config.actionTimeout = timeout
		}
	}
}

// WithWriteTimeout sets the timeout for writing one frame.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.config.writeTimeout = timeout
		}
	}
}

// WithAutoReconnect enables or disables the reconnection supervisor.
// It is enabled by default.
func WithAutoReconnect(enabled bool) Option {
	return func(c *Client) {
		c.config.autoReconnect = enabled
	}
}

// WithReconnectDelay sets the fixed delay between reconnect attempts.
func WithReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.config.reconnectDelay = delay
		}
	}
}

// WithMaxReconnectAttempts bounds the reconnection supervisor. The
// supervisor never retries forever; a fresh Connect call resets the
// budget.
func WithMaxReconnectAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.config.maxReconnectAttempts = n
		}
	}
}

// Options contains configuration values for NewWithOptions. The zero
// value of a field means "use the library default", except
// AutoReconnect which is explicit.
type Options struct {
	Logger               *slog.Logger
	DialOptions          *websocket.DialOptions
	ActionTimeout        time.Duration
	WriteTimeout         time.Duration
	AutoReconnect        bool
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// DefaultOptions returns an Options populated with library defaults.
func DefaultOptions() Options {
	return Options{
		Logger:               slog.Default(),
		DialOptions:          &websocket.DialOptions{HTTPClient: http.DefaultClient},
		ActionTimeout:        DefaultActionTimeout,
		WriteTimeout:         defaultWriteTimeout,
		AutoReconnect:        true,
		ReconnectDelay:       DefaultReconnectDelay,
		MaxReconnectAttempts: DefaultMaxReconnectAttempts,
	}
}

// NewWithOptions creates a Client from an Options struct, normalizing
// zero values to library defaults.
func NewWithOptions(urlStr string, opts Options) *Client {
	c := New(urlStr, WithAutoReconnect(opts.AutoReconnect))
	if opts.Logger != nil {
		c.config.logger = opts.Logger
	}
	if opts.DialOptions != nil {
		c.config.dialOptions = opts.DialOptions
	}
	if opts.ActionTimeout > 0 {
		c.config.actionTimeout = opts.ActionTimeout
	}
	if opts.WriteTimeout > 0 {
		c.config.writeTimeout = opts.WriteTimeout
	}
	if opts.ReconnectDelay > 0 {
		c.config.reconnectDelay = opts.ReconnectDelay
	}
	if opts.MaxReconnectAttempts > 0 {
		c.config.maxReconnectAttempts = opts.MaxReconnectAttempts
	}
	return c
}
