// Package tools is the closed set of things the radio can be asked to do:
// hold a carrier, map addresses, sweep promiscuously or follow a device.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/follower"
	"github.com/herlein/nrf24tools/pkg/mapper"
	"github.com/herlein/nrf24tools/pkg/sweeper"
)

// Tool is one of ToneTest, Mapper, Scanner or Sniffer
type Tool interface {
	Name() string

	// Validate checks the tool's configuration without touching the radio
	Validate() error

	// Run drives the radio until the tool completes or ctx is cancelled.
	// Cancellation is a normal exit and returns nil.
	Run(ctx context.Context, radio esb.Radio) error

	isTool()
}

// Run validates tool, enables the LNA when asked and runs it
func Run(ctx context.Context, radio esb.Radio, tool Tool, lna bool) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	if lna {
		if err := radio.EnableLNA(); err != nil {
			return fmt.Errorf("failed to enable LNA: %w", err)
		}
	}

	if err := tool.Run(ctx, radio); err != nil {
		return fmt.Errorf("%s: %w", tool.Name(), err)
	}
	return nil
}

// ToneTest transmits a continuous carrier on one channel
type ToneTest struct {
	Channel int
}

func (ToneTest) Name() string { return "continuous-tone-test" }
func (ToneTest) isTool()      {}

func (t ToneTest) Validate() error {
	if err := (esb.ChannelSet{t.Channel}).Validate(); err != nil {
		return &esb.ConfigError{Field: "channel", Value: strconv.Itoa(t.Channel), Err: err}
	}
	return nil
}

// Run holds the carrier until ctx is done. Tone-test mode does not end on
// its own, so the radio is returned to promiscuous mode with an empty
// prefix before Run returns.
func (t ToneTest) Run(ctx context.Context, radio esb.Radio) error {
	if err := radio.SetChannel(t.Channel); err != nil {
		return err
	}
	if err := radio.EnterToneTestMode(); err != nil {
		return fmt.Errorf("failed to enter tone test mode: %w", err)
	}

	<-ctx.Done()

	if err := radio.EnterPromiscuousMode(nil); err != nil {
		return fmt.Errorf("failed to leave tone test mode: %w", err)
	}
	return nil
}

// Mapper runs address discovery and hands the result to OnReport
type Mapper struct {
	Config *mapper.Config

	// OnReport receives the deduplicated addresses, including a partial
	// list when the run is cancelled
	OnReport func(addresses []esb.Address)
}

func (Mapper) Name() string { return "network-mapper" }
func (Mapper) isTool()      {}

func (m Mapper) Validate() error {
	return configOrDefault(m.Config, mapper.DefaultConfig).Validate()
}

func (m Mapper) Run(ctx context.Context, radio esb.Radio) error {
	addresses, err := mapper.New(radio, m.Config).Discover(ctx)
	if m.OnReport != nil && (err == nil || cancelled(ctx, err)) {
		m.OnReport(addresses)
	}
	if cancelled(ctx, err) {
		return nil
	}
	return err
}

// Scanner runs the promiscuous sweeper
type Scanner struct {
	Config *sweeper.Config
}

func (Scanner) Name() string { return "scanner" }
func (Scanner) isTool()      {}

func (s Scanner) Validate() error {
	return configOrDefault(s.Config, sweeper.DefaultConfig).Validate()
}

func (s Scanner) Run(ctx context.Context, radio esb.Radio) error {
	sw, err := sweeper.New(radio, s.Config)
	if err != nil {
		return err
	}
	return sw.Run(ctx)
}

// Sniffer follows one address across channels
type Sniffer struct {
	Config *follower.Config
}

func (Sniffer) Name() string { return "sniffer" }
func (Sniffer) isTool()      {}

func (s Sniffer) Validate() error {
	return configOrDefault(s.Config, follower.DefaultConfig).Validate()
}

func (s Sniffer) Run(ctx context.Context, radio esb.Radio) error {
	f, err := follower.New(radio, s.Config)
	if err != nil {
		return err
	}
	return f.Run(ctx)
}

func configOrDefault[T any](config *T, def func() *T) *T {
	if config == nil {
		return def()
	}
	return config
}

func cancelled(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
}
