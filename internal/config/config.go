package config

import "time"

// Config is the root configuration for a recorder instance.
type Config struct {
	Instance    InstanceConfig `yaml:"instance"`
	Environment string         `yaml:"environment"` // testnet, prod, nightly
	API         APIConfig      `yaml:"api"`
	Stream      StreamConfig   `yaml:"stream"`
	Database    DBConfig       `yaml:"database"`
	Recorder    RecorderConfig `yaml:"recorder"`
}

// InstanceConfig identifies this recorder.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Paradex API settings. URLs default from Environment
// when left empty.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	Token      string        `yaml:"token"` // Bearer JWT (usually ${PARADEX_JWT})
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds WebSocket client settings.
type StreamConfig struct {
	PingInterval         time.Duration `yaml:"ping_interval"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	ReconnectWait        time.Duration `yaml:"reconnect_wait"`
	ReconnectMaxWait     time.Duration `yaml:"reconnect_max_wait"`
	ReconnectMultiplier  float64       `yaml:"reconnect_multiplier"`
	ReconnectMaxAttempts int           `yaml:"reconnect_max_attempts"` // 0 = retry forever
}

// DBConfig holds the PostgreSQL connection for recorded payloads.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// RecorderConfig holds batch writer settings and the channel set to
// record.
type RecorderConfig struct {
	Channels      []ChannelConfig `yaml:"channels"`
	BatchSize     int             `yaml:"batch_size"`
	FlushInterval time.Duration   `yaml:"flush_interval"`
}

// ChannelConfig selects one channel family to record. Parameterized
// families take one subscription per market.
type ChannelConfig struct {
	Name    string   `yaml:"name"`
	Markets []string `yaml:"markets"`
	Program string   `yaml:"program"` // points_data only
}
