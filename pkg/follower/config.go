// Package follower keeps the radio tuned to the channel a known ESB device
// is using, re-acquiring it with a channel sweep when it hops.
package follower

import (
	"log/slog"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// Config defines a follow session
type Config struct {
	Address     esb.Address
	Channels    esb.ChannelSet
	Timeout     time.Duration // liveness window before a ping is needed
	AckTimeout  esb.AckTimeout
	Retries     esb.Retries
	PingPayload []byte

	// Callbacks (optional)
	OnPacket   func(packet esb.Packet)   `json:"-"`
	OnAcquired func(channel int)         `json:"-"`
	OnLost     func(address esb.Address) `json:"-"`

	// Now overrides the clock, for tests
	Now func() time.Time `json:"-"`

	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns a Config with the tools' defaults and no address
func DefaultConfig() *Config {
	payload, _ := esb.ParsePayload(esb.DefaultPingPayload)
	return &Config{
		Channels:    esb.DefaultChannels(),
		Timeout:     esb.DefaultTimeout,
		AckTimeout:  esb.AckTimeoutFromMicros(esb.DefaultAckTimeoutMicros),
		Retries:     esb.ClampRetries(esb.DefaultRetries),
		PingPayload: payload,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := c.Address.Validate(); err != nil {
		return &esb.ConfigError{Field: "address", Value: c.Address.String(), Err: err}
	}
	if err := c.Channels.Validate(); err != nil {
		return &esb.ConfigError{Field: "channels", Value: c.Channels.String(), Err: err}
	}
	if c.Timeout < 0 {
		return &esb.ConfigError{Field: "timeout", Value: c.Timeout.String(), Err: esb.ErrInvalidTimeout}
	}
	if len(c.PingPayload) == 0 {
		return &esb.ConfigError{Field: "ping payload", Err: esb.ErrEmptyPayload}
	}
	return nil
}
