package follower

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/esb/esbtest"
)

var target = esb.Address{0x01, 0xE7, 0xE7, 0xE7, 0xE7}

type harness struct {
	radio    *esbtest.Radio
	clock    *esbtest.Clock
	follower *Follower
	packets  []esb.Packet
	acquired []int
	lost     int
}

func newHarness(t *testing.T, channels esb.ChannelSet) *harness {
	t.Helper()

	h := &harness{
		radio: esbtest.NewRadio(),
		clock: esbtest.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	config := DefaultConfig()
	config.Address = target
	config.Channels = channels
	config.Now = h.clock.Now
	config.OnPacket = func(p esb.Packet) { h.packets = append(h.packets, p) }
	config.OnAcquired = func(c int) { h.acquired = append(h.acquired, c) }
	config.OnLost = func(esb.Address) { h.lost++ }

	f, err := New(h.radio, config)
	require.NoError(t, err)
	require.NoError(t, f.Start())
	h.follower = f
	return h
}

func (h *harness) ackOn(channels ...int) {
	h.radio.Ack = func(_ esb.Address, channel int) bool {
		for _, c := range channels {
			if c == channel {
				return true
			}
		}
		return false
	}
}

func TestStart(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})

	assert.Equal(t, esbtest.ModeSniffer, h.radio.Mode())
	assert.Equal(t, target, h.radio.Address())
	assert.Equal(t, 5, h.radio.Channel())
	assert.Equal(t, StateLocked, h.follower.State())
	assert.Equal(t, 5, h.follower.Channel())
	assert.Equal(t, h.clock.Now(), h.follower.LastContact())
}

func TestFollowsChannelHop(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})
	h.ackOn(7)

	h.clock.Advance(150 * time.Millisecond)
	require.NoError(t, h.follower.Tick())

	assert.Equal(t, StateLocked, h.follower.State())
	assert.Equal(t, 7, h.follower.Channel())
	assert.Equal(t, 7, h.radio.Channel())
	assert.Equal(t, h.clock.Now(), h.follower.LastContact())
	assert.Equal(t, []int{7}, h.acquired)

	var pinged []int
	for _, tx := range h.radio.Transmits() {
		pinged = append(pinged, tx.Channel)
	}
	assert.Equal(t, []int{5, 5, 6, 7}, pinged, "current channel first, then a sweep from index 0")
}

func TestNoPingWhileContactIsFresh(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})

	h.clock.Advance(50 * time.Millisecond)
	require.NoError(t, h.follower.Tick())
	h.clock.Advance(50 * time.Millisecond)
	require.NoError(t, h.follower.Tick())

	assert.Empty(t, h.radio.Transmits(), "elapsed == timeout is still fresh")
	assert.Equal(t, 2, h.radio.Receives())
}

func TestPingSuccessOnCurrentChannel(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})
	h.ackOn(5)
	start := h.follower.LastContact()

	h.clock.Advance(101 * time.Millisecond)
	require.NoError(t, h.follower.Tick())

	assert.Len(t, h.radio.Transmits(), 1)
	assert.Equal(t, StateLocked, h.follower.State())
	assert.Equal(t, 5, h.follower.Channel())
	assert.Equal(t, start.Add(101*time.Millisecond), h.follower.LastContact())
	assert.Empty(t, h.acquired)
}

func TestValidFrameResetsLiveness(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})

	h.clock.Advance(80 * time.Millisecond)
	h.radio.QueueFrame([]byte{esb.StatusValid, 0xAA, 0xBB})
	require.NoError(t, h.follower.Tick())

	assert.Equal(t, h.clock.Now(), h.follower.LastContact())
	require.Len(t, h.packets, 1)
	packet := h.packets[0]
	assert.Equal(t, 5, packet.Channel)
	assert.Equal(t, []byte{0xAA, 0xBB}, packet.Payload)
	assert.Equal(t, 2, packet.PayloadLength())
	assert.Equal(t, []byte{0xE7, 0xE7, 0xE7, 0xE7, 0x01}, packet.Address)

	// Contact was refreshed by the frame, so no ping 80ms later either
	h.clock.Advance(80 * time.Millisecond)
	require.NoError(t, h.follower.Tick())
	assert.Empty(t, h.radio.Transmits())
}

func TestInvalidFrameIsIgnored(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})
	start := h.follower.LastContact()

	h.clock.Advance(50 * time.Millisecond)
	h.radio.QueueFrame([]byte{0xFF})
	h.radio.QueueFrame([]byte{0x01, 0xAA, 0xBB})
	require.NoError(t, h.follower.Tick())
	require.NoError(t, h.follower.Tick())
	require.NoError(t, h.follower.Tick()) // empty receive

	assert.Equal(t, start, h.follower.LastContact())
	assert.Empty(t, h.packets)
}

func TestSweepRestartsFromFirstChannel(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{3, 5, 7})
	h.ackOn(7)
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.follower.Tick())
	require.Equal(t, 7, h.follower.Channel())
	contact := h.follower.LastContact()

	// Target goes silent
	h.ackOn()
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.follower.Tick())

	assert.Equal(t, StateSearching, h.follower.State())
	assert.Equal(t, 1, h.lost)
	assert.Equal(t, contact, h.follower.LastContact(), "a failed sweep does not reset liveness")
	assert.Equal(t, 7, h.follower.Channel())
	assert.Equal(t, 7, h.radio.Channel(), "radio returns to the last known channel")

	// Next tick sweeps again from channel_set[0]
	h.radio.Reset()
	h.clock.Advance(10 * time.Millisecond)
	require.NoError(t, h.follower.Tick())

	history := h.radio.ChannelHistory()
	require.NotEmpty(t, history)
	assert.Equal(t, 3, history[0])
	transmits := h.radio.Transmits()
	require.Len(t, transmits, 3)
	assert.Equal(t, 3, transmits[0].Channel)
	assert.Equal(t, 2, h.lost)

	// Target reappears on 5
	h.ackOn(5)
	h.clock.Advance(10 * time.Millisecond)
	require.NoError(t, h.follower.Tick())
	assert.Equal(t, StateLocked, h.follower.State())
	assert.Equal(t, 5, h.follower.Channel())
	assert.Equal(t, h.clock.Now(), h.follower.LastContact())
}

func TestValidFrameWhileSearchingLocks(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6})
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.follower.Tick())
	require.Equal(t, StateSearching, h.follower.State())

	h.radio.QueueFrame([]byte{esb.StatusValid, 0x01})
	h.clock.Advance(time.Millisecond)
	require.NoError(t, h.follower.Tick())

	assert.Equal(t, StateLocked, h.follower.State())
	assert.Equal(t, h.clock.Now(), h.follower.LastContact())
	assert.Len(t, h.packets, 1)
}

func TestLivenessIsMonotonic(t *testing.T) {
	h := newHarness(t, esb.ChannelSet{5, 6, 7})
	h.ackOn(6)

	var previous time.Time
	steps := []time.Duration{30, 120, -500, 40, 300, -1000, 150}
	for i, step := range steps {
		h.clock.Advance(step * time.Millisecond)
		if i%2 == 0 {
			h.radio.QueueFrame([]byte{esb.StatusValid, byte(i)})
		}
		require.NoError(t, h.follower.Tick())

		current := h.follower.LastContact()
		assert.False(t, current.Before(previous), "step %d moved contact backwards", i)
		previous = current
	}
}

func TestLinkFaultsPropagate(t *testing.T) {
	fault := errors.New("usb: no device")

	h := newHarness(t, esb.ChannelSet{5})
	h.radio.ReceiveErr = fault
	assert.ErrorIs(t, h.follower.Tick(), fault)

	h = newHarness(t, esb.ChannelSet{5})
	h.radio.TransmitErr = fault
	h.clock.Advance(time.Second)
	assert.ErrorIs(t, h.follower.Tick(), fault)
}

func TestNewValidates(t *testing.T) {
	_, err := New(esbtest.NewRadio(), nil)
	assert.ErrorIs(t, err, esb.ErrAddressTooShort)

	config := DefaultConfig()
	config.Address = esb.Address{1, 2, 3, 4, 5, 6}
	_, err = New(esbtest.NewRadio(), config)
	assert.True(t, esb.IsConfigError(err))
	assert.ErrorIs(t, err, esb.ErrAddressTooLong)

	config = DefaultConfig()
	config.Address = target
	config.Channels = nil
	_, err = New(esbtest.NewRadio(), config)
	assert.True(t, esb.IsConfigError(err))
	assert.ErrorIs(t, err, esb.ErrNoChannels)

	config.Channels = esb.ChannelSet{1}
	config.Timeout = -time.Second
	_, err = New(esbtest.NewRadio(), config)
	assert.ErrorIs(t, err, esb.ErrInvalidTimeout)
}

func TestRunStopsOnCancel(t *testing.T) {
	radio := esbtest.NewRadio()
	ctx, cancel := context.WithCancel(context.Background())

	config := DefaultConfig()
	config.Address = target
	config.Channels = esb.ChannelSet{9}
	config.OnPacket = func(esb.Packet) { cancel() }

	f, err := New(radio, config)
	require.NoError(t, err)

	radio.QueueFrame([]byte{esb.StatusValid, 0x42})
	assert.NoError(t, f.Run(ctx))
	assert.Equal(t, 9, radio.Channel())
}

func TestRunReturnsLinkFault(t *testing.T) {
	radio := esbtest.NewRadio()
	radio.ReceiveErr = errors.New("usb: pipe error")

	config := DefaultConfig()
	config.Address = target
	f, err := New(radio, config)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Run(context.Background()), radio.ReceiveErr)
}
