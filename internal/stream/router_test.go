package stream

import (
	"context"
	"testing"

	"github.com/iurii2002/paradex-go/internal/channel"
)

// connectedClient returns a client subscribed to nothing, ready for
// direct route() calls.
func connectedClient(t *testing.T, server *wsServer) *Client {
	t.Helper()
	client := New(testConfig(server))
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRouter_DispatchInRegistrationOrder(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	var got []string
	eth := channel.Params{"market": "ETH-USD-PERP"}
	client.Subscribe(channel.Fills, eth, func(m Message) { got = append(got, "first:"+m.Channel) })
	client.Subscribe(channel.Fills, eth, func(m Message) { got = append(got, "second:"+m.Channel) })

	client.route([]byte(`{"params":{"channel":"fills.ETH-USD-PERP","data":{"id":"f1"}}}`))

	if len(got) != 2 {
		t.Fatalf("dispatched %d callbacks, want 2", len(got))
	}
	if got[0] != "first:fills.ETH-USD-PERP" || got[1] != "second:fills.ETH-USD-PERP" {
		t.Errorf("dispatch order = %v", got)
	}
}

func TestRouter_ChannelIsolation(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	var ethMsgs, btcMsgs int
	client.Subscribe(channel.Fills, channel.Params{"market": "ETH-USD-PERP"}, func(Message) { ethMsgs++ })
	client.Subscribe(channel.Fills, channel.Params{"market": "BTC-USD-PERP"}, func(Message) { btcMsgs++ })

	client.route([]byte(`{"params":{"channel":"fills.ETH-USD-PERP","data":{}}}`))

	if ethMsgs != 1 {
		t.Errorf("ETH subscriber received %d messages, want 1", ethMsgs)
	}
	if btcMsgs != 0 {
		t.Errorf("BTC subscriber received %d messages, want 0", btcMsgs)
	}
}

func TestRouter_PayloadPassedThrough(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	var got Message
	client.Subscribe(channel.Positions, nil, func(m Message) { got = m })

	client.route([]byte(`{"params":{"channel":"positions","data":{"market":"ETH-USD-PERP","size":"0.2"}}}`))

	if got.Channel != "positions" {
		t.Errorf("Channel = %q, want positions", got.Channel)
	}
	if string(got.Data) != `{"market":"ETH-USD-PERP","size":"0.2"}` {
		t.Errorf("Data = %s", got.Data)
	}
}

func TestRouter_PongNeverDispatched(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	// Even a subscriber registered under the literal "pong" key must
	// not see keepalive acks.
	called := false
	client.mu.Lock()
	client.active["pong"] = []Subscription{{ID: 99, Callback: func(Message) { called = true }}}
	client.mu.Unlock()

	client.route([]byte(`{"params":{"channel":"pong"}}`))

	if called {
		t.Error("pong reached a subscriber callback")
	}
	if got := client.Stats().Pongs; got != 1 {
		t.Errorf("Pongs = %d, want 1", got)
	}
}

func TestRouter_NonActionableFrames(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	called := false
	client.Subscribe(channel.Positions, nil, func(Message) { called = true })

	// No params, plain-text banner, malformed JSON, params without
	// channel: all logged and dropped, never dispatched, never fatal.
	client.route([]byte(`{"id":1,"jsonrpc":"2.0","result":"ok"}`))
	client.route([]byte(`Websocket connection established.`))
	client.route([]byte(`{"params":`))
	client.route([]byte(`{"params":{"data":{"x":1}}}`))

	if called {
		t.Error("non-actionable frame reached a subscriber")
	}
	stats := client.Stats()
	if stats.NonActionable != 3 {
		t.Errorf("NonActionable = %d, want 3", stats.NonActionable)
	}
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
}

func TestRouter_NoSubscriberDropped(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	client.route([]byte(`{"params":{"channel":"fills.ETH-USD-PERP","data":{}}}`))

	stats := client.Stats()
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
	if stats.Dispatched != 0 {
		t.Errorf("Dispatched = %d, want 0", stats.Dispatched)
	}
}

func TestRouter_CallbackPanicIsolated(t *testing.T) {
	server := newWSServer(t)
	defer server.close()
	client := connectedClient(t, server)

	var delivered []int64
	eth := channel.Params{"market": "ETH-USD-PERP"}
	client.Subscribe(channel.Trades, eth, func(Message) { panic("subscriber bug") })
	client.Subscribe(channel.Trades, eth, func(Message) { delivered = append(delivered, 2) })

	client.route([]byte(`{"params":{"channel":"trades.ETH-USD-PERP","data":{}}}`))

	if len(delivered) != 1 {
		t.Fatalf("sibling subscriber received %d messages, want 1", len(delivered))
	}

	// The router loop survives: a later frame still dispatches.
	client.route([]byte(`{"params":{"channel":"trades.ETH-USD-PERP","data":{}}}`))
	if len(delivered) != 2 {
		t.Errorf("delivered = %d messages after second frame, want 2", len(delivered))
	}
}
