// Package ami defines the wire model spoken by an AMI-over-WebSocket
// bridge: the JSON envelope, outbound actions, typed errors and the
// presence-state vocabulary.
package ami

// Envelope type tags.
const (
	TypeAction   = "action"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Well-known keys inside the flat Data map. AMI's native model is flat
// key/value, so everything else in Data is action- or event-specific.
const (
	KeyAction   = "Action"
	KeyActionID = "ActionID"
	KeyEvent    = "Event"
	KeyResponse = "Response"
	KeyMessage  = "Message"
)

// ResponseSuccess is the value of the Response field on a successful
// action reply. Anything else is a failure.
const ResponseSuccess = "Success"

// EventPresenceStateChange is the event name republished on the
// narrower presence channel.
const EventPresenceStateChange = "PresenceStateChange"

// Message is the JSON envelope used in both directions between the
// client and the bridge.
type Message struct {
	Type       string            `json:"type"`
	ServerID   int               `json:"server_id,omitempty"`
	ServerName string            `json:"server_name,omitempty"`
	SSL        bool              `json:"ssl,omitempty"`
	Data       map[string]string `json:"data"`
}

// Get returns the named Data field, or "" when absent.
func (m *Message) Get(key string) string {
	if m.Data == nil {
		return ""
	}
	return m.Data[key]
}

// ActionID returns the correlation token carried in Data, if any.
func (m *Message) ActionID() string { return m.Get(KeyActionID) }

// Event returns the event name carried in Data, if any.
func (m *Message) Event() string { return m.Get(KeyEvent) }

// Success reports whether this message is a successful action reply.
func (m *Message) Success() bool { return m.Get(KeyResponse) == ResponseSuccess }

// ErrorMessage returns the backend-supplied Message field. Callers
// pattern-match on this text, so it is never rewritten.
func (m *Message) ErrorMessage() string { return m.Get(KeyMessage) }

// NewActionMessage wraps an outbound action in the wire envelope.
func NewActionMessage(act Action) *Message {
	return &Message{Type: TypeAction, Data: act}
}
