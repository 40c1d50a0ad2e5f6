package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/logging"
)

// Sweeper hops a promiscuous radio through the channel set on a fixed
// dwell time. It is not safe for concurrent use.
type Sweeper struct {
	radio  esb.Radio
	config *Config
	logger *slog.Logger
	now    func() time.Time

	channelIndex int
	lastTune     time.Time
}

// New validates config and creates a Sweeper. A nil config uses
// DefaultConfig.
func New(radio esb.Radio, config *Config) (*Sweeper, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Sweeper{
		radio:  radio,
		config: config,
		logger: logging.OrDiscard(config.Logger),
		now:    now,
	}, nil
}

// Start puts the radio in promiscuous mode on the first channel
func (s *Sweeper) Start() error {
	if err := s.radio.EnterPromiscuousMode(s.config.Prefix); err != nil {
		return fmt.Errorf("failed to enter promiscuous mode: %w", err)
	}

	s.channelIndex = 0
	if err := s.radio.SetChannel(s.config.Channels[0]); err != nil {
		return err
	}
	s.lastTune = s.now()

	s.logger.Debug("sweeping", "config", s.config.String())
	return nil
}

// Run starts the sweep and ticks until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.Tick(); err != nil {
			return err
		}
	}
}

// Tick moves to the next channel once the dwell time has passed, then
// polls for one frame.
func (s *Sweeper) Tick() error {
	if len(s.config.Channels) > 1 && s.now().Sub(s.lastTune) > s.config.DwellTime {
		s.channelIndex = (s.channelIndex + 1) % len(s.config.Channels)
		if err := s.radio.SetChannel(s.Channel()); err != nil {
			return err
		}
		s.lastTune = s.now()
	}

	frame, err := s.radio.ReceivePayload()
	if err != nil {
		return err
	}
	if len(frame) < esb.AddressWidth {
		return nil
	}

	packet := esb.Packet{
		Timestamp: s.now(),
		Channel:   s.Channel(),
		Address:   append([]byte(nil), frame[:esb.AddressWidth]...),
		Payload:   append([]byte(nil), frame[esb.AddressWidth:]...),
	}
	if s.config.OnPacket != nil {
		s.config.OnPacket(packet)
	}
	return nil
}

// Channel returns the channel currently tuned
func (s *Sweeper) Channel() int {
	return s.config.Channels[s.channelIndex]
}
