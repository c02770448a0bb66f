package client

import (
	"context"
	"strconv"
	"time"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// OriginateRequest describes an Originate action. Either Exten/Context
// or Application/Data identify the far end once Channel answers.
type OriginateRequest struct {
	Channel     string
	Exten       string
	Context     string
	Priority    int
	CallerID    string
	Application string
	Data        string
	Timeout     time.Duration
	Variables   map[string]string
}

// OriginateResult is read back from a successful Originate reply.
type OriginateResult struct {
	Channel  string
	UniqueID string
}

// Originate starts an outbound call.
func (c *Client) Originate(ctx context.Context, req OriginateRequest) (*OriginateResult, error) {
	act := ami.NewAction("Originate")
	act["Channel"] = req.Channel
	if req.Exten != "" {
		act["Exten"] = req.Exten
	}
	if req.Context != "" {
		act["Context"] = req.Context
	}
	if req.Priority > 0 {
		act["Priority"] = strconv.Itoa(req.Priority)
	}
	if req.CallerID != "" {
		act["CallerID"] = req.CallerID
	}
	if req.Application != "" {
		act["Application"] = req.Application
	}
	if req.Data != "" {
		act["Data"] = req.Data
	}
	if req.Timeout > 0 {
		act["Timeout"] = strconv.FormatInt(req.Timeout.Milliseconds(), 10)
	}
	for k, v := range req.Variables {
		act["Variable: "+k] = v
	}

	resp, err := c.expectSuccess(ctx, act)
	if err != nil {
		return nil, err
	}
	return &OriginateResult{
		Channel:  resp.Get("Channel"),
		UniqueID: resp.Get("Uniqueid"),
	}, nil
}

// HangupChannel hangs up the named channel.
func (c *Client) HangupChannel(ctx context.Context, channel string) error {
	act := ami.NewAction("Hangup")
	act["Channel"] = channel
	_, err := c.expectSuccess(ctx, act)
	return err
}

// Redirect transfers a channel to the given extension.
func (c *Client) Redirect(ctx context.Context, channel, exten, dialplanContext string, priority int) error {
	if priority <= 0 {
		priority = 1
	}
	act := ami.NewAction("Redirect")
	act["Channel"] = channel
	act["Exten"] = exten
	act["Context"] = dialplanContext
	act["Priority"] = strconv.Itoa(priority)
	_, err := c.expectSuccess(ctx, act)
	return err
}
