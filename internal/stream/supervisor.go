package stream

import (
	"context"
	"time"
)

// triggerReconnect tears down the current transport and dials a
// replacement, preserving the registry's subscription state so install
// can replay it with original ids. gen guards against stale triggers
// from loops bound to an already-replaced transport; the reconnecting
// flag collapses concurrent triggers from the read loop and the
// keepalive sender into one supervisor run.
func (c *Client) triggerReconnect(gen int) {
	c.mu.Lock()
	if c.closed || c.reconnecting || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.ready = false
	old := c.conn
	c.conn = nil
	c.mu.Unlock()

	if old != nil {
		old.close()
	}
	c.reconnectLoop()
}

// reconnectLoop redials until a connection is established or the
// policy's attempt budget is exhausted. With the default policy it
// waits a fixed 5s and retries forever.
func (c *Client) reconnectLoop() {
	policy := c.cfg.Reconnect
	wait := policy.Wait

	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(wait):
		}

		c.logger.Warn("reconnecting websocket", "attempt", attempt)

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
		t, err := dialTransport(ctx, c.cfg.URL, c.cfg.Token, c.cfg.HandshakeTimeout, c.cfg.WriteTimeout)
		cancel()

		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				t.close()
				return
			}
			c.stats.Reconnects++
			c.reconnecting = false
			c.mu.Unlock()

			c.install(t)
			c.logger.Info("websocket reconnected", "attempt", attempt)
			if c.cfg.OnReconnect != nil {
				c.cfg.OnReconnect(c)
			}
			return
		}

		c.logger.Warn("reconnect dial failed", "attempt", attempt, "error", err)

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			c.logger.Error("reconnect attempts exhausted, closing client", "attempts", attempt)
			c.Close()
			return
		}
		wait = policy.next(wait)
	}
}
