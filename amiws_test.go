package amiws_test

import (
	"context"
	"testing"
	"time"

	amiws "github.com/voxbridge/go-amiws"
	"github.com/voxbridge/go-amiws/pkg/ami"
	"github.com/voxbridge/go-amiws/pkg/testutil"
)

// The root package is a facade; this exercises a whole round trip
// through the re-exported surface.
func TestFacadeRoundTrip(t *testing.T) {
	b := testutil.NewBridge(t, func(act ami.Action) *ami.Message {
		return testutil.SuccessReply(act, map[string]string{"Ping": "Pong"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := amiws.Dial(ctx, b.WsURL, amiws.WithAutoReconnect(false))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if c.State() != amiws.StateConnected {
		t.Fatalf("state = %v, want connected", c.State())
	}

	resp, err := c.Send(ctx, amiws.NewAction("Ping"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !resp.Success() || resp.Get("Ping") != "Pong" {
		t.Errorf("response = %v", resp.Data)
	}
}

func TestFacadeErrorCodes(t *testing.T) {
	c := amiws.New("ws://127.0.0.1:1/")
	_, err := c.Send(context.Background(), amiws.NewAction("Ping"))
	if !amiws.IsCode(err, amiws.CodeNotConnected) {
		t.Errorf("err = %v, want NOT_CONNECTED", err)
	}
}
