package client

import (
	"context"
	"strconv"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// QueueAddOptions are the optional fields of QueueAdd.
type QueueAddOptions struct {
	MemberName string
	Penalty    int // sent only when > 0
	Paused     bool
}

// QueueAdd adds an interface as a member of a queue.
func (c *Client) QueueAdd(ctx context.Context, queue, iface string, opts QueueAddOptions) error {
	act := ami.NewAction("QueueAdd")
	act["Queue"] = queue
	act["Interface"] = iface
	if opts.MemberName != "" {
		act["MemberName"] = opts.MemberName
	}
	if opts.Penalty > 0 {
		act["Penalty"] = strconv.Itoa(opts.Penalty)
	}
	// Booleans travel as "true"/"false" strings on the wire.
	act["Paused"] = strconv.FormatBool(opts.Paused)
	_, err := c.expectSuccess(ctx, act)
	return err
}

// QueueRemove removes a member from a queue.
func (c *Client) QueueRemove(ctx context.Context, queue, iface string) error {
	act := ami.NewAction("QueueRemove")
	act["Queue"] = queue
	act["Interface"] = iface
	_, err := c.expectSuccess(ctx, act)
	return err
}

// QueuePause pauses or unpauses a queue member. reason may be empty.
func (c *Client) QueuePause(ctx context.Context, queue, iface string, paused bool, reason string) error {
	act := ami.NewAction("QueuePause")
	act["Queue"] = queue
	act["Interface"] = iface
	act["Paused"] = strconv.FormatBool(paused)
	if reason != "" {
		act["Reason"] = reason
	}
	_, err := c.expectSuccess(ctx, act)
	return err
}

// QueueStatus requests the status of one queue (or all queues when
// queue is empty). Detail arrives as subsequent events; the returned
// message is the acknowledging reply.
func (c *Client) QueueStatus(ctx context.Context, queue string) (*ami.Message, error) {
	act := ami.NewAction("QueueStatus")
	if queue != "" {
		act["Queue"] = queue
	}
	return c.expectSuccess(ctx, act)
}

// QueueSummary requests a summary of one queue (or all queues).
func (c *Client) QueueSummary(ctx context.Context, queue string) (*ami.Message, error) {
	act := ami.NewAction("QueueSummary")
	if queue != "" {
		act["Queue"] = queue
	}
	return c.expectSuccess(ctx, act)
}
