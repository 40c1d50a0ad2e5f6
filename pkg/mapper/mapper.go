package mapper

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/exp/slices"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/logging"
)

// Mapper probes the address space around a base address
type Mapper struct {
	radio  esb.Radio
	config *Config
	logger *slog.Logger
}

// New creates a Mapper. A nil config uses DefaultConfig, which still needs
// an address before Discover will run.
func New(radio esb.Radio, config *Config) *Mapper {
	if config == nil {
		config = DefaultConfig()
	}
	return &Mapper{
		radio:  radio,
		config: config,
		logger: logging.OrDiscard(config.Logger),
	}
}

// Discover runs the configured number of passes over all 256 probe
// addresses and every channel, then returns each responsive address once,
// sorted by display order.
//
// A missed ping is the normal outcome and is not an error. Cancelling ctx
// stops the run and returns what was found so far along with ctx.Err().
func Discover(ctx context.Context, radio esb.Radio, base esb.Address, channels esb.ChannelSet, passes int) ([]esb.Address, error) {
	config := DefaultConfig()
	config.Address = base
	config.Channels = channels
	config.Passes = passes
	return New(radio, config).Discover(ctx)
}

// Discover runs the probe sweep with the Mapper's configuration
func (m *Mapper) Discover(ctx context.Context) ([]esb.Address, error) {
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	m.logger.Debug("starting address discovery", "config", m.config.String(), "probes", m.config.ProbeCount())

	found := make(map[string]esb.Address)
	for pass := 1; pass <= m.config.Passes; pass++ {
		for b := 0; b < 256; b++ {
			if err := ctx.Err(); err != nil {
				return collect(found), err
			}

			probe := m.config.Address.WithByte(ProbePosition, byte(b))
			if err := m.probe(probe, found); err != nil {
				return collect(found), err
			}
		}
		m.logger.Debug("pass complete", "pass", pass, "found", len(found))
	}

	return collect(found), nil
}

// probe pings one address on every channel
func (m *Mapper) probe(address esb.Address, found map[string]esb.Address) error {
	m.logger.Debug("trying address", "address", address.String())

	if err := m.radio.EnterSnifferMode(address); err != nil {
		return fmt.Errorf("failed to configure address %s: %w", address, err)
	}

	for _, channel := range m.config.Channels {
		if err := m.radio.SetChannel(channel); err != nil {
			return err
		}

		ok, err := m.radio.TransmitPayload(m.config.PingPayload, m.config.AckTimeout, m.config.Retries)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		found[string(address)] = address
		m.logger.Info("successful ping", "address", address.String(), "channel", channel)
		if m.config.OnFound != nil {
			m.config.OnFound(address, channel)
		}
	}

	return nil
}

func collect(found map[string]esb.Address) []esb.Address {
	addresses := make([]esb.Address, 0, len(found))
	for _, address := range found {
		addresses = append(addresses, address)
	}
	slices.SortFunc(addresses, func(a, b esb.Address) int {
		return a.Compare(b)
	})
	return addresses
}
