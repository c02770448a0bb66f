package client

import (
	"sync"

	"github.com/cskr/pubsub"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// EventKind names the closed set of client event channels. Event names
// are compile-time checked: subscription goes through the typed On*
// methods rather than free-form strings.
type EventKind string

const (
	EventConnected      EventKind = "connected"
	EventDisconnected   EventKind = "disconnected"
	EventMessage        EventKind = "message"
	EventEvent          EventKind = "event"
	EventPresenceChange EventKind = "presenceChange"
)

// eventBus fans client events out to subscribers over cskr/pubsub.
// Publishing never blocks the read pump: a subscriber that cannot keep
// up has events dropped, same policy as a full send buffer.
type eventBus struct {
	mu     sync.RWMutex
	ps     *pubsub.PubSub
	closed bool
}

func newEventBus(capacity int) *eventBus {
	return &eventBus{ps: pubsub.New(capacity)}
}

func (b *eventBus) publish(kind EventKind, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.ps.TryPub(payload, string(kind))
}

func (b *eventBus) publishConnected()                    { b.publish(EventConnected, struct{}{}) }
func (b *eventBus) publishDisconnected(reason string)    { b.publish(EventDisconnected, reason) }
func (b *eventBus) publishMessage(m *ami.Message)        { b.publish(EventMessage, m) }
func (b *eventBus) publishEvent(m *ami.Message)          { b.publish(EventEvent, m) }
func (b *eventBus) publishPresenceChange(m *ami.Message) { b.publish(EventPresenceChange, m) }

// subscribe registers fn for one event kind and returns an unsubscribe
// handle. fn runs on a dedicated goroutine per subscription, so one
// slow handler never stalls another.
func (b *eventBus) subscribe(kind EventKind, fn func(interface{})) func() {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return func() {}
	}
	ch := b.ps.Sub(string(kind))
	b.mu.RUnlock()

	go func() {
		for v := range ch {
			fn(v)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.RLock()
			defer b.mu.RUnlock()
			if b.closed {
				return
			}
			b.ps.Unsub(ch, string(kind))
		})
	}
}

func (b *eventBus) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.ps.Shutdown()
}

// OnConnected registers a handler invoked whenever a connection is
// established, including reconnections. It returns an unsubscribe
// function.
func (c *Client) OnConnected(fn func()) func() {
	return c.bus.subscribe(EventConnected, func(interface{}) { fn() })
}

// OnDisconnected registers a handler invoked when the client enters
// the Disconnected state; reason is "Manual disconnect" for
// user-initiated teardown.
func (c *Client) OnDisconnected(fn func(reason string)) func() {
	return c.bus.subscribe(EventDisconnected, func(v interface{}) {
		if reason, ok := v.(string); ok {
			fn(reason)
		}
	})
}

// OnMessage registers a handler for every inbound frame that did not
// settle a pending action. Primarily an observability hook.
func (c *Client) OnMessage(fn func(*ami.Message)) func() {
	return c.subscribeMessage(EventMessage, fn)
}

// OnEvent registers a handler for unsolicited frames carrying an Event
// field.
func (c *Client) OnEvent(fn func(*ami.Message)) func() {
	return c.subscribeMessage(EventEvent, fn)
}

// OnPresenceChange registers a handler for PresenceStateChange events,
// republished on this narrower channel so subscribers need not
// string-match on OnEvent.
func (c *Client) OnPresenceChange(fn func(*ami.Message)) func() {
	return c.subscribeMessage(EventPresenceChange, fn)
}

func (c *Client) subscribeMessage(kind EventKind, fn func(*ami.Message)) func() {
	return c.bus.subscribe(kind, func(v interface{}) {
		if m, ok := v.(*ami.Message); ok {
			fn(m)
		}
	})
}
