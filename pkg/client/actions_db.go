package client

import (
	"context"

	"github.com/voxbridge/go-amiws/pkg/ami"
)

// dbNotFoundMessage is the backend text for a missing database entry.
const dbNotFoundMessage = "Database entry not found"

// DBGet reads one value from the backend database. The second return
// distinguishes an absent key (false, nil error) from a present key
// with an empty value (true). Other failure replies are returned as
// *ami.ResponseError.
func (c *Client) DBGet(ctx context.Context, family, key string) (string, bool, error) {
	act := ami.NewAction("DBGet")
	act["Family"] = family
	act["Key"] = key
	resp, err := c.Send(ctx, act)
	if err != nil {
		return "", false, err
	}
	if !resp.Success() {
		if resp.ErrorMessage() == dbNotFoundMessage {
			return "", false, nil
		}
		return "", false, ami.NewResponseError(resp)
	}
	return resp.Get("Val"), true, nil
}

// DBPut writes one value to the backend database.
func (c *Client) DBPut(ctx context.Context, family, key, value string) error {
	act := ami.NewAction("DBPut")
	act["Family"] = family
	act["Key"] = key
	act["Val"] = value
	_, err := c.expectSuccess(ctx, act)
	return err
}

// DBDel deletes one key from the backend database.
func (c *Client) DBDel(ctx context.Context, family, key string) error {
	act := ami.NewAction("DBDel")
	act["Family"] = family
	act["Key"] = key
	_, err := c.expectSuccess(ctx, act)
	return err
}
