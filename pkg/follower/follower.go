package follower

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/logging"
)

// State is the follower's belief about the target
type State int

const (
	// StateLocked means the target is believed to be on the current channel
	StateLocked State = iota

	// StateSearching means the last sweep failed to find the target
	StateSearching
)

func (s State) String() string {
	if s == StateSearching {
		return "searching"
	}
	return "locked"
}

// Follower tracks one address across channel hops. It owns the radio for
// as long as it runs and is not safe for concurrent use.
type Follower struct {
	radio  esb.Radio
	config *Config
	logger *slog.Logger
	now    func() time.Time

	state        State
	channelIndex int
	lastContact  time.Time
}

// New validates config and creates a Follower
func New(radio esb.Radio, config *Config) (*Follower, error) {
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

	return &Follower{
		radio:  radio,
		config: config,
		logger: logging.OrDiscard(config.Logger),
		now:    now,
	}, nil
}

// Start locks the radio onto the target address on the first channel
func (f *Follower) Start() error {
	if err := f.radio.EnterSnifferMode(f.config.Address); err != nil {
		return fmt.Errorf("failed to enter sniffer mode: %w", err)
	}

	f.channelIndex = 0
	if err := f.radio.SetChannel(f.config.Channels[0]); err != nil {
		return err
	}

	f.state = StateLocked
	f.touch(f.now())
	f.logger.Debug("following address", "address", f.config.Address.String(), "channel", f.Channel())
	return nil
}

// Run starts the follower and ticks until ctx is cancelled. It returns nil
// on cancellation and the link error if the radio fails.
func (f *Follower) Run(ctx context.Context) error {
	if err := f.Start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := f.Tick(); err != nil {
			return err
		}
	}
}

// Tick runs one control-loop iteration: a liveness check when the contact
// window has expired, then one receive.
func (f *Follower) Tick() error {
	if f.state == StateSearching {
		if err := f.sweep(); err != nil {
			return err
		}
	} else if f.now().Sub(f.lastContact) > f.config.Timeout {
		if err := f.checkLiveness(); err != nil {
			return err
		}
	}

	return f.receive()
}

// checkLiveness pings the current channel and sweeps if that fails
func (f *Follower) checkLiveness() error {
	ok, err := f.ping()
	if err != nil {
		return err
	}
	if ok {
		f.logger.Debug("ping success", "channel", f.Channel())
		f.touch(f.now())
		return nil
	}

	f.state = StateSearching
	return f.sweep()
}

// sweep pings every channel in declaration order from the first. On a
// total miss the radio goes back to the last channel the target was seen
// on and the contact time is left alone, so the next tick sweeps again.
func (f *Follower) sweep() error {
	for i, channel := range f.config.Channels {
		if err := f.radio.SetChannel(channel); err != nil {
			return err
		}

		ok, err := f.ping()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		f.channelIndex = i
		f.state = StateLocked
		f.touch(f.now())
		f.logger.Debug("ping success", "channel", channel)
		if f.config.OnAcquired != nil {
			f.config.OnAcquired(channel)
		}
		return nil
	}

	f.logger.Debug("unable to ping", "address", f.config.Address.String())
	if f.config.OnLost != nil {
		f.config.OnLost(f.config.Address)
	}

	return f.radio.SetChannel(f.Channel())
}

func (f *Follower) ping() (bool, error) {
	return f.radio.TransmitPayload(f.config.PingPayload, f.config.AckTimeout, f.config.Retries)
}

// receive polls for one frame. Only frames flagged valid count as contact.
func (f *Follower) receive() error {
	frame, err := f.radio.ReceivePayload()
	if err != nil {
		return err
	}
	if len(frame) == 0 || frame[0] != esb.StatusValid {
		return nil
	}

	now := f.now()
	f.touch(now)
	f.state = StateLocked

	packet := esb.Packet{
		Timestamp: now,
		Channel:   f.Channel(),
		Address:   f.config.Address.Display(),
		Payload:   append([]byte(nil), frame[1:]...),
	}
	if f.config.OnPacket != nil {
		f.config.OnPacket(packet)
	}
	return nil
}

// touch records contact at t; the contact time never moves backwards
func (f *Follower) touch(t time.Time) {
	if t.After(f.lastContact) {
		f.lastContact = t
	}
}

// State returns the current state
func (f *Follower) State() State {
	return f.state
}

// Channel returns the channel the target is believed to be on
func (f *Follower) Channel() int {
	return f.config.Channels[f.channelIndex]
}

// LastContact returns the time of the last successful ping or valid frame
func (f *Follower) LastContact() time.Time {
	return f.lastContact
}
