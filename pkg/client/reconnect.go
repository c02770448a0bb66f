package client

import "time"

// reconnectLoop is the reconnection supervisor. It runs after an
// unexpected transport loss when auto-reconnect is enabled: at most
// maxReconnectAttempts dials separated by the fixed reconnectDelay.
// A successful dial resets the attempt counter; exhausting the budget
// leaves the client Disconnected. Manual Disconnect cancels the
// session context, which aborts the delay wait immediately.
func (c *Client) reconnectLoop() {
	for {
		c.mu.Lock()
		if c.manualClose || c.closed || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		if c.attempts >= c.config.maxReconnectAttempts {
			c.state = StateDisconnected
			c.mu.Unlock()
			c.config.logger.Warn("reconnect attempts exhausted",
				"max_attempts", c.config.maxReconnectAttempts)
			c.bus.publishDisconnected("Reconnect attempts exhausted")
			return
		}
		c.attempts++
		attempt := c.attempts
		sessionCtx := c.sessionCtx
		c.mu.Unlock()

		select {
		case <-time.After(c.config.reconnectDelay):
		case <-sessionCtx.Done():
			// Disconnect() won; it must never be resurrected.
			return
		}

		c.config.logger.Info("attempting reconnect",
			"attempt", attempt, "max_attempts", c.config.maxReconnectAttempts)
		err := c.dial(sessionCtx)
		if err == nil {
			c.config.logger.Info("reconnected", "attempt", attempt)
			return
		}
		c.config.logger.Warn("reconnect attempt failed", "attempt", attempt, "err", err)
	}
}
