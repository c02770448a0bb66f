package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/voxbridge/go-amiws/pkg/ami"
	"github.com/voxbridge/go-amiws/pkg/client"
	"github.com/voxbridge/go-amiws/pkg/testutil"
)

// capture records every action the bridge receives.
type capture struct {
	mu   sync.Mutex
	acts []ami.Action
}

func (cp *capture) add(act ami.Action) {
	cp.mu.Lock()
	cp.acts = append(cp.acts, act)
	cp.mu.Unlock()
}

func (cp *capture) last() ami.Action {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if len(cp.acts) == 0 {
		return nil
	}
	return cp.acts[len(cp.acts)-1]
}

func captureBridge(t *testing.T, reply func(act ami.Action) *ami.Message) (*testutil.Bridge, *capture) {
	t.Helper()
	cp := &capture{}
	b := testutil.NewBridge(t, func(act ami.Action) *ami.Message {
		cp.add(act)
		return reply(act)
	})
	return b, cp
}

func TestSetPresenceStateSerialization(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	err := c.SetPresenceState(context.Background(), "1000", ami.PresenceAway,
		client.SetPresenceOptions{Message: "BRB"})
	if err != nil {
		t.Fatalf("set presence: %v", err)
	}

	act := cp.last()
	if got := act["State"]; got != "AWAY" {
		t.Errorf("State = %q, want AWAY", got)
	}
	if got := act["Message"]; got != "BRB" {
		t.Errorf("Message = %q, want BRB", got)
	}
	if got := act["Provider"]; got != "CustomPresence:1000" {
		t.Errorf("Provider = %q", got)
	}
}

func TestGetPresenceState(t *testing.T) {
	b, _ := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.SuccessReply(act, map[string]string{"State": "CHAT"})
	})
	c := startClient(t, b)

	state, err := c.GetPresenceState(context.Background(), "1000")
	if err != nil {
		t.Fatalf("get presence: %v", err)
	}
	if state != ami.PresenceChat {
		t.Errorf("state = %v, want chat", state)
	}
}

func TestGetPresenceStateErrorMessageVerbatim(t *testing.T) {
	b, _ := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.ErrorReply(act, "Extension not found")
	})
	c := startClient(t, b)

	_, err := c.GetPresenceState(context.Background(), "9999")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "Extension not found" {
		t.Errorf("error message = %q, want it verbatim", err.Error())
	}
	var respErr *ami.ResponseError
	if !errors.As(err, &respErr) {
		t.Errorf("error is %T, want *ami.ResponseError", err)
	}
}

func TestQueuePauseSerialization(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	if err := c.QueuePause(context.Background(), "support", "SIP/1001", true, "Break"); err != nil {
		t.Fatalf("queue pause: %v", err)
	}

	act := cp.last()
	if got := act[ami.KeyAction]; got != "QueuePause" {
		t.Errorf("Action = %q", got)
	}
	if got := act["Paused"]; got != "true" {
		t.Errorf("Paused = %q, want the string \"true\"", got)
	}
	if got := act["Reason"]; got != "Break" {
		t.Errorf("Reason = %q, want Break", got)
	}

	if err := c.QueuePause(context.Background(), "support", "SIP/1001", false, ""); err != nil {
		t.Fatalf("queue unpause: %v", err)
	}
	act = cp.last()
	if got := act["Paused"]; got != "false" {
		t.Errorf("Paused = %q, want the string \"false\"", got)
	}
	if _, present := act["Reason"]; present {
		t.Error("empty Reason must be omitted")
	}
}

func TestQueueAddSerializationAndFailure(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	err := c.QueueAdd(context.Background(), "support", "SIP/1001", client.QueueAddOptions{
		MemberName: "Alice",
		Penalty:    2,
		Paused:     true,
	})
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	act := cp.last()
	if act["Queue"] != "support" || act["Interface"] != "SIP/1001" {
		t.Errorf("queue/interface = %q/%q", act["Queue"], act["Interface"])
	}
	if act["MemberName"] != "Alice" || act["Penalty"] != "2" || act["Paused"] != "true" {
		t.Errorf("options serialized as %v", act)
	}

	b.Handle(func(act ami.Action) *ami.Message {
		return testutil.ErrorReply(act, "Unable to add interface: Already there")
	})
	err = c.QueueAdd(context.Background(), "support", "SIP/1001", client.QueueAddOptions{})
	if err == nil || err.Error() != "Unable to add interface: Already there" {
		t.Errorf("failure message = %v", err)
	}
}

func TestQueueRemove(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	if err := c.QueueRemove(context.Background(), "support", "SIP/1001"); err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	if got := cp.last()[ami.KeyAction]; got != "QueueRemove" {
		t.Errorf("Action = %q", got)
	}
}

func TestDBGetFound(t *testing.T) {
	b, cp := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.SuccessReply(act, map[string]string{"Val": "enabled"})
	})
	c := startClient(t, b)

	val, found, err := c.DBGet(context.Background(), "features", "cf/1000")
	if err != nil {
		t.Fatalf("db get: %v", err)
	}
	if !found || val != "enabled" {
		t.Errorf("got (%q, %v), want (enabled, true)", val, found)
	}
	act := cp.last()
	if act["Family"] != "features" || act["Key"] != "cf/1000" {
		t.Errorf("serialized %v", act)
	}
}

func TestDBGetNotFound(t *testing.T) {
	b, _ := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.ErrorReply(act, "Database entry not found")
	})
	c := startClient(t, b)

	val, found, err := c.DBGet(context.Background(), "features", "missing")
	if err != nil {
		t.Fatalf("absent key must not be an error, got %v", err)
	}
	if found || val != "" {
		t.Errorf("got (%q, %v), want (\"\", false)", val, found)
	}
}

func TestDBGetOtherErrorSurfaced(t *testing.T) {
	b, _ := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.ErrorReply(act, "Permission denied")
	})
	c := startClient(t, b)

	_, _, err := c.DBGet(context.Background(), "features", "x")
	if err == nil || err.Error() != "Permission denied" {
		t.Errorf("err = %v, want Permission denied verbatim", err)
	}
}

func TestDBPutAndDel(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	if err := c.DBPut(context.Background(), "features", "cf/1000", "1234"); err != nil {
		t.Fatalf("db put: %v", err)
	}
	if got := cp.last()["Val"]; got != "1234" {
		t.Errorf("Val = %q", got)
	}

	if err := c.DBDel(context.Background(), "features", "cf/1000"); err != nil {
		t.Fatalf("db del: %v", err)
	}
	if got := cp.last()[ami.KeyAction]; got != "DBDel" {
		t.Errorf("Action = %q", got)
	}
}

func TestOriginate(t *testing.T) {
	b, cp := captureBridge(t, func(act ami.Action) *ami.Message {
		return testutil.SuccessReply(act, map[string]string{
			"Channel":  "SIP/1000-00000001",
			"Uniqueid": "1724900000.17",
		})
	})
	c := startClient(t, b)

	res, err := c.Originate(context.Background(), client.OriginateRequest{
		Channel:  "SIP/1000",
		Exten:    "2000",
		Context:  "internal",
		Priority: 1,
		CallerID: "Front Desk <1000>",
	})
	if err != nil {
		t.Fatalf("originate: %v", err)
	}
	if res.Channel != "SIP/1000-00000001" || res.UniqueID != "1724900000.17" {
		t.Errorf("result = %+v", res)
	}

	act := cp.last()
	if act["Exten"] != "2000" || act["Context"] != "internal" || act["CallerID"] != "Front Desk <1000>" {
		t.Errorf("serialized %v", act)
	}
}

func TestHangupChannel(t *testing.T) {
	b, cp := captureBridge(t, echoSuccess)
	c := startClient(t, b)

	if err := c.HangupChannel(context.Background(), "SIP/1000-00000001"); err != nil {
		t.Fatalf("hangup: %v", err)
	}
	act := cp.last()
	if act[ami.KeyAction] != "Hangup" || act["Channel"] != "SIP/1000-00000001" {
		t.Errorf("serialized %v", act)
	}
}
