// Package esbtest provides an in-memory radio and clock for host-side tests.
package esbtest

import (
	"sync"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// Mode is the radio mode last entered on the fake
type Mode int

const (
	ModeNone Mode = iota
	ModePromiscuous
	ModeSniffer
	ModeToneTest
)

func (m Mode) String() string {
	switch m {
	case ModePromiscuous:
		return "promiscuous"
	case ModeSniffer:
		return "sniffer"
	case ModeToneTest:
		return "tone-test"
	default:
		return "none"
	}
}

// Transmit records one TransmitPayload call
type Transmit struct {
	Address esb.Address
	Channel int
	Payload []byte
	Timeout esb.AckTimeout
	Retries esb.Retries
}

// Radio implements esb.Radio in memory. Ack decides which transmits are
// acknowledged; queued frames are returned by ReceivePayload in order.
type Radio struct {
	mu sync.Mutex

	// Ack reports whether a transmit to address on channel is acknowledged.
	// nil acknowledges nothing.
	Ack func(address esb.Address, channel int) bool

	// TransmitErr and ReceiveErr simulate link faults
	TransmitErr error
	ReceiveErr  error

	channel   int
	mode      Mode
	address   esb.Address
	prefix    []byte
	lna       bool
	frames    [][]byte
	channels  []int
	modes     []Mode
	transmits []Transmit
	receives  int
}

// NewRadio returns a fake radio that acknowledges nothing
func NewRadio() *Radio {
	return &Radio{}
}

func (r *Radio) SetChannel(channel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = channel
	r.channels = append(r.channels, channel)
	return nil
}

func (r *Radio) EnterPromiscuousMode(prefix []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(ModePromiscuous)
	r.prefix = append([]byte(nil), prefix...)
	r.address = nil
	return nil
}

func (r *Radio) EnterSnifferMode(address esb.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(ModeSniffer)
	r.address = append(esb.Address(nil), address...)
	r.prefix = nil
	return nil
}

func (r *Radio) EnterToneTestMode() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(ModeToneTest)
	return nil
}

func (r *Radio) setMode(mode Mode) {
	r.mode = mode
	r.modes = append(r.modes, mode)
}

func (r *Radio) TransmitPayload(payload []byte, timeout esb.AckTimeout, retries esb.Retries) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.TransmitErr != nil {
		return false, r.TransmitErr
	}

	r.transmits = append(r.transmits, Transmit{
		Address: append(esb.Address(nil), r.address...),
		Channel: r.channel,
		Payload: append([]byte(nil), payload...),
		Timeout: timeout,
		Retries: retries,
	})

	if r.mode != ModeSniffer || r.Ack == nil {
		return false, nil
	}
	return r.Ack(r.address, r.channel), nil
}

func (r *Radio) ReceivePayload() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.receives++
	if r.ReceiveErr != nil {
		return nil, r.ReceiveErr
	}
	if len(r.frames) == 0 {
		return nil, nil
	}
	frame := r.frames[0]
	r.frames = r.frames[1:]
	return frame, nil
}

func (r *Radio) EnableLNA() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lna = true
	return nil
}

// QueueFrame makes frame the next pending receive
func (r *Radio) QueueFrame(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, append([]byte(nil), frame...))
}

// Channel returns the channel the radio is tuned to
func (r *Radio) Channel() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// Mode returns the current mode
func (r *Radio) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Modes returns every mode entered, in order
func (r *Radio) Modes() []Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mode(nil), r.modes...)
}

// Address returns the sniffer address last configured
func (r *Radio) Address() esb.Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(esb.Address(nil), r.address...)
}

// Prefix returns the promiscuous prefix last configured
func (r *Radio) Prefix() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.prefix...)
}

// LNAEnabled reports whether EnableLNA was called
func (r *Radio) LNAEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lna
}

// ChannelHistory returns every SetChannel argument, in order
func (r *Radio) ChannelHistory() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.channels...)
}

// Transmits returns every transmit attempt, in order
func (r *Radio) Transmits() []Transmit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transmit(nil), r.transmits...)
}

// Receives returns how many times ReceivePayload was called
func (r *Radio) Receives() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receives
}

// Reset clears the call history but keeps mode, channel and queued frames
func (r *Radio) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = nil
	r.modes = nil
	r.transmits = nil
	r.receives = 0
}

// Clock is a manually advanced time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t, which may be in the past
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
