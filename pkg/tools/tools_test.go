package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/esb/esbtest"
	"github.com/herlein/nrf24tools/pkg/follower"
	"github.com/herlein/nrf24tools/pkg/mapper"
	"github.com/herlein/nrf24tools/pkg/sweeper"
)

func TestToneTest(t *testing.T) {
	radio := esbtest.NewRadio()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, radio, ToneTest{Channel: 42}, false)
	}()

	require.Eventually(t, func() bool {
		return radio.Mode() == esbtest.ModeToneTest
	}, time.Second, time.Millisecond)
	assert.Equal(t, 42, radio.Channel())

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []esbtest.Mode{esbtest.ModeToneTest, esbtest.ModePromiscuous}, radio.Modes())
	assert.Empty(t, radio.Prefix())
	assert.False(t, radio.LNAEnabled())
}

func TestToneTestRejectsBadChannel(t *testing.T) {
	radio := esbtest.NewRadio()

	err := Run(context.Background(), radio, ToneTest{Channel: 200}, true)
	assert.True(t, esb.IsConfigError(err))
	assert.ErrorIs(t, err, esb.ErrChannelOutOfRange)
	assert.False(t, radio.LNAEnabled(), "validation happens before any radio I/O")
	assert.Empty(t, radio.ChannelHistory())
}

func TestMapperReportsAddresses(t *testing.T) {
	radio := esbtest.NewRadio()
	radio.Ack = func(address esb.Address, channel int) bool {
		return address[mapper.ProbePosition] == 0x0F && channel == 3
	}

	config := mapper.DefaultConfig()
	config.Address = esb.Address{0x00, 0x00, 0x00, 0x00, 0x00}
	config.Channels = esb.ChannelSet{2, 3}
	config.Passes = 1

	var report []esb.Address
	tool := Mapper{Config: config, OnReport: func(a []esb.Address) { report = a }}

	require.NoError(t, Run(context.Background(), radio, tool, true))
	assert.True(t, radio.LNAEnabled())
	assert.Equal(t, []esb.Address{{0x0F, 0x00, 0x00, 0x00, 0x00}}, report)
}

func TestMapperCancelledReportsPartial(t *testing.T) {
	radio := esbtest.NewRadio()
	ctx, cancel := context.WithCancel(context.Background())
	radio.Ack = func(address esb.Address, _ int) bool {
		if address[mapper.ProbePosition] == 0x10 {
			cancel()
			return true
		}
		return false
	}

	config := mapper.DefaultConfig()
	config.Address = esb.Address{0x00, 0x01}
	config.Channels = esb.ChannelSet{2}

	var report []esb.Address
	reported := false
	tool := Mapper{Config: config, OnReport: func(a []esb.Address) {
		reported = true
		report = a
	}}

	require.NoError(t, Run(ctx, radio, tool, false))
	assert.True(t, reported)
	assert.Equal(t, []esb.Address{{0x10, 0x01}}, report)
}

func TestMapperFault(t *testing.T) {
	radio := esbtest.NewRadio()
	radio.TransmitErr = errors.New("usb: no device")

	config := mapper.DefaultConfig()
	config.Address = esb.Address{0x00, 0x01}

	reported := false
	err := Run(context.Background(), radio, Mapper{Config: config, OnReport: func([]esb.Address) { reported = true }}, false)
	assert.ErrorIs(t, err, radio.TransmitErr)
	assert.Contains(t, err.Error(), "network-mapper")
	assert.False(t, reported)
}

func TestMapperWithoutAddress(t *testing.T) {
	radio := esbtest.NewRadio()
	err := Run(context.Background(), radio, Mapper{}, false)
	assert.ErrorIs(t, err, esb.ErrAddressTooShort)
	assert.Empty(t, radio.Modes())
}

func TestScanner(t *testing.T) {
	radio := esbtest.NewRadio()
	ctx, cancel := context.WithCancel(context.Background())

	var packets []esb.Packet
	config := sweeper.DefaultConfig()
	config.Prefix = []byte{0xAB}
	config.OnPacket = func(p esb.Packet) {
		packets = append(packets, p)
		cancel()
	}

	radio.QueueFrame([]byte{0xAB, 1, 2, 3, 4, 0x55})
	require.NoError(t, Run(ctx, radio, Scanner{Config: config}, false))

	require.Len(t, packets, 1)
	assert.Equal(t, []byte{0x55}, packets[0].Payload)
	assert.Equal(t, []byte{0xAB}, radio.Prefix())
}

func TestSniffer(t *testing.T) {
	radio := esbtest.NewRadio()
	ctx, cancel := context.WithCancel(context.Background())

	var packets []esb.Packet
	config := follower.DefaultConfig()
	config.Address = esb.Address{0x01, 0x02, 0x03}
	config.OnPacket = func(p esb.Packet) {
		packets = append(packets, p)
		cancel()
	}

	radio.QueueFrame([]byte{esb.StatusValid, 0x99})
	require.NoError(t, Run(ctx, radio, Sniffer{Config: config}, false))

	require.Len(t, packets, 1)
	assert.Equal(t, []byte{0x03, 0x02, 0x01}, packets[0].Address)
	assert.Equal(t, esb.Address{0x01, 0x02, 0x03}, radio.Address())
}

func TestNames(t *testing.T) {
	tests := []struct {
		tool Tool
		want string
	}{
		{ToneTest{}, "continuous-tone-test"},
		{Mapper{}, "network-mapper"},
		{Scanner{}, "scanner"},
		{Sniffer{}, "sniffer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tool.Name())
	}
}
