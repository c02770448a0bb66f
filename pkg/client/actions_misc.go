package client

import (
	"context"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// Ping sends a Ping action and returns once the bridge answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.expectSuccess(ctx, ami.NewAction("Ping"))
	return err
}

// SIPPeers requests the SIP peer listing. Peer detail arrives as
// subsequent events; the returned message is the acknowledging reply.
func (c *Client) SIPPeers(ctx context.Context) (*ami.Message, error) {
	return c.expectSuccess(ctx, ami.NewAction("SIPpeers"))
}
