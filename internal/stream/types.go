package stream

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrNotConnected          = errors.New("not connected")
	ErrNeverConnected        = errors.New("websocket has never connected")
	ErrDuplicateSubscription = errors.New("duplicate subscription on restricted channel")
	ErrAlreadyConnected      = errors.New("already connected")
	ErrClosed                = errors.New("client closed")
)

// jsonrpcVersion is stamped on every request that carries an id.
const jsonrpcVersion = "2.0"

// channelPong is the reserved channel value the server uses to
// acknowledge a ping. It never reaches subscriber callbacks.
const channelPong = "pong"

// Message is the params object of a subscription push. Data is the
// channel-specific payload, passed through opaque.
type Message struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Callback receives pushed messages for one subscription.
type Callback func(Message)

// Subscription pairs a callback with its registry-assigned id.
type Subscription struct {
	ID       int64
	Callback Callback
}

// pendingSub is a subscription waiting for transport readiness.
type pendingSub struct {
	resolved string
	sub      Subscription
}

// pushFrame is the envelope of an inbound frame. Frames without a
// params object are non-actionable.
type pushFrame struct {
	Params *Message `json:"params"`
}

// request is a JSON-RPC shaped outbound frame.
type request struct {
	ID      int64          `json:"id,omitempty"`
	JSONRPC string         `json:"jsonrpc,omitempty"`
	Method  string         `json:"method"`
	Params  *requestParams `json:"params,omitempty"`
}

// requestParams covers every outbound method; unused fields are omitted.
type requestParams struct {
	Bearer  string `json:"bearer,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// wireID derives a request id from the current time in microseconds.
// Monotonic enough to disambiguate requests; responses are not
// correlated, so global uniqueness is not required.
func wireID() int64 {
	return time.Now().UnixMicro()
}

func authRequest(token string) request {
	return request{ID: wireID(), JSONRPC: jsonrpcVersion, Method: "auth", Params: &requestParams{Bearer: token}}
}

func subscribeRequest(resolved string) request {
	return request{ID: wireID(), JSONRPC: jsonrpcVersion, Method: "subscribe", Params: &requestParams{Channel: resolved}}
}

func unsubscribeRequest(resolved string) request {
	return request{ID: wireID(), JSONRPC: jsonrpcVersion, Method: "unsubscribe", Params: &requestParams{Channel: resolved}}
}

func pingRequest() request {
	return request{Method: "ping"}
}

// ReconnectPolicy controls the wait between reconnection attempts.
type ReconnectPolicy struct {
	Wait        time.Duration // wait before the first redial
	MaxWait     time.Duration // cap when Multiplier > 1
	Multiplier  float64       // 1 = fixed wait
	MaxAttempts int           // 0 = retry forever
}

// DefaultReconnectPolicy waits a fixed 5s between attempts and never
// gives up.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Wait:       5 * time.Second,
		MaxWait:    5 * time.Second,
		Multiplier: 1,
	}
}

// next returns the wait to use after a failed attempt.
func (p ReconnectPolicy) next(wait time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return wait
	}
	wait = time.Duration(float64(wait) * p.Multiplier)
	if p.MaxWait > 0 && wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

// Config configures a stream Client.
type Config struct {
	URL              string          // WebSocket URL (e.g., wss://ws.api.testnet.paradex.trade/v1)
	Token            string          // Bearer JWT; empty = unauthenticated, public channels only
	PingInterval     time.Duration   // Keepalive period
	WriteTimeout     time.Duration   // Write deadline for sends
	HandshakeTimeout time.Duration   // WebSocket dial timeout
	Reconnect        ReconnectPolicy // Wait policy between redials
	OnReconnect      func(*Client)   // Invoked after a replacement connection is live
	Logger           *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:     50 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		Reconnect:        DefaultReconnectPolicy(),
	}
}

func (cfg *Config) applyDefaults() {
	def := DefaultConfig()
	if cfg.PingInterval == 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.Reconnect.Wait == 0 {
		cfg.Reconnect = def.Reconnect
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// Stats contains runtime counters.
type Stats struct {
	Received      int64 // Inbound frames seen
	Dispatched    int64 // Callback invocations
	NonActionable int64 // Frames without params
	Dropped       int64 // Frames with no live subscriber or no channel
	Pongs         int64 // Keepalive acknowledgments
	Reconnects    int64 // Completed transport replacements
}
