package config

import (
	"errors"
	"fmt"

	"github.com/iurii2002/paradex-go/internal/channel"
)

var validEnvironments = map[string]bool{
	"testnet": true,
	"prod":    true,
	"nightly": true,
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}
	if !validEnvironments[c.Environment] {
		return fmt.Errorf("environment must be one of testnet, prod, nightly; got %q", c.Environment)
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if len(c.Recorder.Channels) == 0 {
		return errors.New("recorder.channels must list at least one channel")
	}
	for i, ch := range c.Recorder.Channels {
		if err := ch.validate(fmt.Sprintf("recorder.channels[%d]", i)); err != nil {
			return err
		}
	}
	if c.Recorder.BatchSize < 1 {
		return errors.New("recorder.batch_size must be >= 1")
	}

	if c.Stream.ReconnectMaxAttempts < 0 {
		return errors.New("stream.reconnect_max_attempts must be >= 0")
	}

	return nil
}

func (ch *ChannelConfig) validate(prefix string) error {
	fam, ok := channel.FromName(ch.Name)
	if !ok {
		return fmt.Errorf("%s.name: unknown channel %q", prefix, ch.Name)
	}

	// A family with a {market} placeholder needs at least one market.
	if _, err := fam.Resolve(nil); err != nil && len(ch.Markets) == 0 {
		return fmt.Errorf("%s: channel %q requires markets", prefix, ch.Name)
	}
	if fam == channel.PointsData && ch.Program == "" {
		return fmt.Errorf("%s: channel %q requires program", prefix, ch.Name)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
