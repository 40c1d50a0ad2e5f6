// Package sweeper rotates a promiscuous-mode radio across a channel set and
// captures every frame it hears along the way.
package sweeper

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// Config defines a promiscuous sweep
type Config struct {
	Prefix    []byte // 0-5 bytes, empty listens for everything
	Channels  esb.ChannelSet
	DwellTime time.Duration // time spent on each channel before moving on

	OnPacket func(packet esb.Packet) `json:"-"`

	// Now overrides the clock, for tests
	Now func() time.Time `json:"-"`

	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns a Config with an empty prefix on the default channels
func DefaultConfig() *Config {
	return &Config{
		Channels:  esb.DefaultChannels(),
		DwellTime: esb.DefaultDwellTime,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if len(c.Prefix) > esb.AddressWidth {
		return &esb.ConfigError{Field: "prefix", Value: esb.FormatHex(c.Prefix), Err: esb.ErrPrefixTooLong}
	}
	if err := c.Channels.Validate(); err != nil {
		return &esb.ConfigError{Field: "channels", Value: c.Channels.String(), Err: err}
	}
	if c.DwellTime < 0 {
		return &esb.ConfigError{Field: "dwell time", Value: c.DwellTime.String(), Err: esb.ErrInvalidTimeout}
	}
	return nil
}

func (c *Config) String() string {
	prefix := esb.FormatHex(c.Prefix)
	if prefix == "" {
		prefix = "none"
	}
	return fmt.Sprintf("prefix=%s channels=%d dwell=%s", prefix, len(c.Channels), c.DwellTime)
}
