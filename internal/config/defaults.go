package config

import (
	"fmt"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultEnvironment         = "testnet"
	DefaultAPITimeout          = 30 * time.Second
	DefaultMaxRetries          = 3
	DefaultDBPort              = 5432
	DefaultDBSSLMode           = "prefer"
	DefaultMaxConns            = 10
	DefaultMinConns            = 2
	DefaultPingInterval        = 50 * time.Second
	DefaultWriteTimeout        = 5 * time.Second
	DefaultHandshakeTimeout    = 10 * time.Second
	DefaultReconnectWait       = 5 * time.Second
	DefaultReconnectMultiplier = 1.0
	DefaultBatchSize           = 1000
	DefaultFlushInterval       = 1 * time.Second
)

// RestURLFor returns the REST base URL for an environment.
func RestURLFor(env string) string {
	return fmt.Sprintf("https://api.%s.paradex.trade/v1", env)
}

// WSURLFor returns the WebSocket URL for an environment.
func WSURLFor(env string) string {
	return fmt.Sprintf("wss://ws.api.%s.paradex.trade/v1", env)
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}

	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = RestURLFor(c.Environment)
	}
	if c.API.WSURL == "" {
		c.API.WSURL = WSURLFor(c.Environment)
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Stream defaults
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.HandshakeTimeout == 0 {
		c.Stream.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Stream.ReconnectWait == 0 {
		c.Stream.ReconnectWait = DefaultReconnectWait
	}
	if c.Stream.ReconnectMaxWait == 0 {
		c.Stream.ReconnectMaxWait = c.Stream.ReconnectWait
	}
	if c.Stream.ReconnectMultiplier == 0 {
		c.Stream.ReconnectMultiplier = DefaultReconnectMultiplier
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
}
