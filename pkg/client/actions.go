package client

import (
	"context"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// expectSuccess sends an action and fails unless the reply's Response
// field is "Success". Failure replies become *ami.ResponseError with
// the backend Message verbatim.
func (c *Client) expectSuccess(ctx context.Context, act ami.Action) (*ami.Message, error) {
	resp, err := c.Send(ctx, act)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, ami.NewResponseError(resp)
	}
	return resp, nil
}
