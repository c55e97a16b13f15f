package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iurii2002/paradex-go/internal/channel"
)

// Client is a persistent, multiplexed WebSocket client. It maintains
// subscriptions to many server-pushed channels over one connection,
// survives connection loss, and dispatches inbound messages to
// per-channel callback sets.
type Client struct {
	cfg    Config
	logger *slog.Logger

	// done stops the keepalive loop and silences read errors on Close.
	done chan struct{}

	// mu guards every field below. It is held only for lookups and
	// mutations, never across a blocking send.
	mu           sync.Mutex
	conn         *transport
	gen          int // transport generation, bumped on every install
	ready        bool
	everReady    bool
	closed       bool
	reconnecting bool
	keepalive    bool

	queued []pendingSub
	active map[string][]Subscription
	order  []string // resolved channels in first-subscribe order
	nextID int64

	stats Stats
}

// New creates a client. No connection is made until Connect.
func New(cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		cfg:    cfg,
		logger: cfg.Logger,
		done:   make(chan struct{}),
		active: make(map[string][]Subscription),
	}
}

// Connect dials the WebSocket, performs the auth handshake, marks the
// client ready and drains any subscriptions queued before this point.
// The keepalive sender starts on the first successful Connect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	t, err := dialTransport(ctx, c.cfg.URL, c.cfg.Token, c.cfg.HandshakeTimeout, c.cfg.WriteTimeout)
	if err != nil {
		return err
	}

	c.logger.Debug("websocket connected", "url", c.cfg.URL)
	c.install(t)

	c.mu.Lock()
	startKeepalive := !c.keepalive
	c.keepalive = true
	c.mu.Unlock()
	if startKeepalive {
		go c.keepaliveLoop()
	}

	return nil
}

// Subscribe registers cb for a channel resolved from params and
// returns its subscription id. Before the transport is ready the
// request queues and is replayed on readiness; when ready, the
// subscribe request is sent immediately and the subscription is
// optimistically considered live.
func (c *Client) Subscribe(ch channel.Channel, params channel.Params, cb Callback) (int64, error) {
	resolved, err := ch.Resolve(params)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.nextID++
	sub := Subscription{ID: c.nextID, Callback: cb}
	if !c.ready {
		c.queued = append(c.queued, pendingSub{resolved: resolved, sub: sub})
		c.mu.Unlock()
		c.logger.Debug("queued subscription", "channel", resolved, "id", sub.ID)
		return sub.ID, nil
	}
	c.mu.Unlock()

	if err := c.subscribeResolved(resolved, sub); err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// subscribeResolved adds sub to the active set and sends the subscribe
// request. Shared by Subscribe and replay; replayed subscriptions keep
// their original ids. A not-ready transport (swap window) re-queues.
func (c *Client) subscribeResolved(resolved string, sub Subscription) error {
	c.mu.Lock()
	if !c.ready {
		c.queued = append(c.queued, pendingSub{resolved: resolved, sub: sub})
		c.mu.Unlock()
		return nil
	}
	if channel.Restricted(resolved) && len(c.active[resolved]) != 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateSubscription, resolved)
	}
	if len(c.active[resolved]) == 0 {
		c.order = append(c.order, resolved)
	}
	c.active[resolved] = append(c.active[resolved], sub)
	t := c.conn
	c.mu.Unlock()

	c.logger.Info("subscribed", "channel", resolved, "id", sub.ID)
	return t.send(subscribeRequest(resolved))
}

// Unsubscribe removes the subscription matching channel and id. It
// returns true iff an entry was removed. The unsubscribe request goes
// on the wire only when the last subscriber of a channel leaves.
func (c *Client) Unsubscribe(ch channel.Channel, id int64, params channel.Params) (bool, error) {
	resolved, err := ch.Resolve(params)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if !c.everReady {
		c.mu.Unlock()
		return false, ErrNeverConnected
	}

	subs := c.active[resolved]
	kept := make([]Subscription, 0, len(subs))
	removed := false
	for _, s := range subs {
		if s.ID == id {
			removed = true
			continue
		}
		kept = append(kept, s)
	}

	var t *transport
	sendWire := false
	if removed {
		if len(kept) == 0 {
			delete(c.active, resolved)
			c.dropOrder(resolved)
			sendWire = c.ready
			t = c.conn
		} else {
			c.active[resolved] = kept
		}
	}
	c.mu.Unlock()

	if !removed {
		return false, nil
	}

	c.logger.Info("unsubscribed", "channel", resolved, "id", id)
	if sendWire && t != nil {
		if err := t.send(unsubscribeRequest(resolved)); err != nil {
			// Local removal already took effect; the dead channel is
			// simply not replayed after reconnect.
			c.logger.Warn("unsubscribe send failed", "channel", resolved, "error", err)
		}
	}
	return true, nil
}

// install makes t the current transport: in-band auth handshake, ready
// transition, and replay of subscription state. The queue drains into
// the active tables under one lock, previously active channels ahead
// of anything queued while down, every subscription retaining its
// original id. The tables themselves are never cleared, so an
// Unsubscribe racing the replay takes effect instead of being
// resurrected.
func (c *Client) install(t *transport) {
	if c.cfg.Token != "" {
		if err := t.send(authRequest(c.cfg.Token)); err != nil {
			c.logger.Warn("auth send failed", "error", err)
		} else {
			c.logger.Info("authenticated", "url", c.cfg.URL)
		}
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.conn = t
	c.ready = true
	c.everReady = true

	// Drain the queue exactly once per connection lifecycle. A queued
	// subscription on a restricted channel that already has an active
	// subscriber is refused here, the same as a live Subscribe.
	queued := c.queued
	c.queued = nil
	for _, p := range queued {
		if channel.Restricted(p.resolved) && len(c.active[p.resolved]) != 0 {
			c.logger.Warn("dropping queued duplicate on restricted channel", "channel", p.resolved, "id", p.sub.ID)
			continue
		}
		if len(c.active[p.resolved]) == 0 {
			c.order = append(c.order, p.resolved)
		}
		c.active[p.resolved] = append(c.active[p.resolved], p.sub)
	}
	channels := append([]string(nil), c.order...)
	c.mu.Unlock()

	// Announce every live channel on the new transport. A channel
	// emptied by an Unsubscribe since the snapshot is skipped.
	for _, resolved := range channels {
		c.mu.Lock()
		alive := len(c.active[resolved]) > 0
		c.mu.Unlock()
		if !alive {
			continue
		}
		c.logger.Info("subscribed", "channel", resolved)
		if err := t.send(subscribeRequest(resolved)); err != nil {
			c.logger.Warn("subscription replay failed", "channel", resolved, "error", err)
		}
	}

	go c.readLoop(t, gen)
}

// readLoop consumes inbound frames from one transport and routes each
// synchronously. It ends with the transport.
func (c *Client) readLoop(t *transport, gen int) {
	for {
		data, err := t.read()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn("websocket read failed", "error", err)
			c.triggerReconnect(gen)
			return
		}
		c.route(data)
	}
}

// dropOrder removes resolved from the replay ordering.
func (c *Client) dropOrder(resolved string) {
	for i, ch := range c.order {
		if ch == resolved {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// IsReady reports whether the transport is open and subscribe traffic
// goes straight to the wire.
func (c *Client) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Stats returns current counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close shuts the client down. Safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.ready = false
	t := c.conn
	c.mu.Unlock()

	close(c.done)
	if t != nil {
		return t.close()
	}
	return nil
}
