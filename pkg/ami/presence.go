package ami

import (
	"fmt"
	"strings"
)

// PresenceState is the closed vocabulary of extension presence states.
// On the wire these travel as upper-case tokens (AVAILABLE, AWAY, ...).
type PresenceState string

const (
	PresenceNotSet      PresenceState = "not_set"
	PresenceUnavailable PresenceState = "unavailable"
	PresenceAvailable   PresenceState = "available"
	PresenceAway        PresenceState = "away"
	PresenceXA          PresenceState = "xa"
	PresenceChat        PresenceState = "chat"
	PresenceDND         PresenceState = "dnd"
)

// Wire returns the upper-case token used by the protocol.
func (s PresenceState) Wire() string { return strings.ToUpper(string(s)) }

// ParsePresenceState maps a wire token back to a PresenceState.
func ParsePresenceState(token string) (PresenceState, error) {
	switch s := PresenceState(strings.ToLower(token)); s {
	case PresenceNotSet, PresenceUnavailable, PresenceAvailable,
		PresenceAway, PresenceXA, PresenceChat, PresenceDND:
		return s, nil
	}
	return "", fmt.Errorf("unknown presence state %q", token)
}
