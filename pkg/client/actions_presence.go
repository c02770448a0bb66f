package client

import (
	"context"
	"fmt"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// presenceProvider is the provider prefix used for extension presence.
const presenceProvider = "CustomPresence:"

// SetPresenceOptions are the optional fields of SetPresenceState.
type SetPresenceOptions struct {
	// Message is a free-form status line shown next to the state.
	Message string
}

// GetPresenceState queries the presence of an extension. A failure
// reply is returned as *ami.ResponseError carrying the backend text
// verbatim (e.g. "Extension not found").
func (c *Client) GetPresenceState(ctx context.Context, extension string) (ami.PresenceState, error) {
	act := ami.NewAction("PresenceState")
	act["Provider"] = presenceProvider + extension
	resp, err := c.expectSuccess(ctx, act)
	if err != nil {
		return "", err
	}
	token := resp.Get("State")
	if token == "" {
		token = resp.Get("Status")
	}
	state, err := ami.ParsePresenceState(token)
	if err != nil {
		return "", fmt.Errorf("presence query for %s: %w", extension, err)
	}
	return state, nil
}

// SetPresenceState changes the presence of an extension. The state is
// serialized as its upper-case wire token.
func (c *Client) SetPresenceState(ctx context.Context, extension string, state ami.PresenceState, opts SetPresenceOptions) error {
	act := ami.NewAction("SetPresenceState")
	act["Provider"] = presenceProvider + extension
	act["State"] = state.Wire()
	if opts.Message != "" {
		act["Message"] = opts.Message
	}
	_, err := c.expectSuccess(ctx, act)
	return err
}
