package stream

import "encoding/json"

// route classifies one inbound frame and fans it out to the channel's
// subscribers. Runs synchronously on the read loop.
func (c *Client) route(data []byte) {
	c.mu.Lock()
	c.stats.Received++
	c.mu.Unlock()

	var frame pushFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		// The server greets new connections with a plain-text banner.
		c.logger.Debug("discarding non-JSON frame", "data", string(data))
		c.count(func(s *Stats) { s.NonActionable++ })
		return
	}

	if frame.Params == nil {
		c.logger.Debug("non-actionable message", "data", string(data))
		c.count(func(s *Stats) { s.NonActionable++ })
		return
	}

	// Keepalive ack. Checked before subscriber lookup so it can never
	// reach a callback.
	if frame.Params.Channel == channelPong {
		c.logger.Debug("websocket received pong")
		c.count(func(s *Stats) { s.Pongs++ })
		return
	}

	if frame.Params.Channel == "" {
		c.logger.Debug("push message without channel", "data", string(data))
		c.count(func(s *Stats) { s.Dropped++ })
		return
	}

	c.mu.Lock()
	subs := append([]Subscription(nil), c.active[frame.Params.Channel]...)
	c.mu.Unlock()

	if len(subs) == 0 {
		// Expected race while an unsubscribe is in flight.
		c.logger.Info("message for channel with no live subscriber", "channel", frame.Params.Channel)
		c.count(func(s *Stats) { s.Dropped++ })
		return
	}

	for _, sub := range subs {
		c.dispatch(sub, *frame.Params)
	}
	c.count(func(s *Stats) { s.Dispatched += int64(len(subs)) })
}

// dispatch invokes one callback, isolating panics so a failing
// subscriber cannot block delivery to its siblings.
func (c *Client) dispatch(sub Subscription, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("subscriber callback panicked",
				"channel", msg.Channel,
				"id", sub.ID,
				"panic", r,
			)
		}
	}()
	sub.Callback(msg)
}

func (c *Client) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}
