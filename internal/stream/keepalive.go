package stream

import "time"

// keepaliveLoop emits a ping on a fixed period, independent of message
// traffic. It is the liveness detector for the whole client: a send
// failure, or a handle that reports disconnected, hands control to the
// reconnection supervisor, after which the loop keeps ticking against
// whatever transport is current. It only exits on Close.
func (c *Client) keepaliveLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		t, gen, closed := c.conn, c.gen, c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		if t == nil || !t.isConnected() {
			c.logger.Warn("websocket is not connected, attempting to reconnect")
			c.triggerReconnect(gen)
			continue
		}

		c.logger.Debug("websocket sending ping")
		if err := t.send(pingRequest()); err != nil {
			c.logger.Warn("websocket ping failed, attempting to reconnect", "error", err)
			c.triggerReconnect(gen)
		}
	}
}
