// Package mapper discovers live ESB addresses by probing one address byte
// across a channel set.
package mapper

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// Defaults
const (
	// DefaultPasses repeats the full sweep to ride out RF noise
	DefaultPasses = 2

	// ProbePosition is the address byte varied across 0-255
	ProbePosition = 0
)

// Config defines a discovery run
type Config struct {
	Address     esb.Address    // base address; byte ProbePosition is replaced
	Channels    esb.ChannelSet // probed in declaration order
	Passes      int
	AckTimeout  esb.AckTimeout
	Retries     esb.Retries
	PingPayload []byte

	// OnFound is called for every successful ping, including repeats
	OnFound func(address esb.Address, channel int) `json:"-"`

	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns a Config with the tools' defaults and no address
func DefaultConfig() *Config {
	payload, _ := esb.ParsePayload(esb.DefaultPingPayload)
	return &Config{
		Channels:    esb.DefaultChannels(),
		Passes:      DefaultPasses,
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
	if c.Passes < 1 {
		return &esb.ConfigError{Field: "passes", Value: strconv.Itoa(c.Passes), Err: esb.ErrInvalidPasses}
	}
	if len(c.PingPayload) == 0 {
		return &esb.ConfigError{Field: "ping payload", Err: esb.ErrEmptyPayload}
	}
	return nil
}

// ProbeCount is the number of transmits a full run performs
func (c *Config) ProbeCount() int {
	return 256 * c.Passes * len(c.Channels)
}

func (c *Config) String() string {
	return fmt.Sprintf("address=%s channels=%d passes=%d ack=%dus retries=%d",
		c.Address, len(c.Channels), c.Passes, c.AckTimeout.Micros(), c.Retries)
}
