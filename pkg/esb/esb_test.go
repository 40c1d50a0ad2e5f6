package esb

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		display string
	}{
		{"colon separated", "E7:E7:E7:E7:01", Address{0x01, 0xE7, 0xE7, 0xE7, 0xE7}, "E7:E7:E7:E7:01"},
		{"plain hex", "a1b2c3d4e5", Address{0xE5, 0xD4, 0xC3, 0xB2, 0xA1}, "A1:B2:C3:D4:E5"},
		{"two bytes", "12:34", Address{0x34, 0x12}, "12:34"},
		{"truncated to five bytes", "01:02:03:04:05:06", Address{0x06, 0x05, 0x04, 0x03, 0x02}, "02:03:04:05:06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAddress(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			assert.Equal(t, tt.display, got.String())
		})
	}
}

func TestParseAddressErrors(t *testing.T) {
	_, err := ParseAddress("AB")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, ErrAddressTooShort)

	_, err = ParseAddress("")
	assert.ErrorIs(t, err, ErrAddressTooShort)

	_, err = ParseAddress("ZZ:01")
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, ErrInvalidHex)
}

func TestParsePrefix(t *testing.T) {
	prefix, err := ParsePrefix("")
	require.NoError(t, err)
	assert.Empty(t, prefix)

	prefix, err = ParsePrefix("AA:BB")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, prefix)

	_, err = ParsePrefix("01:02:03:04:05:06")
	assert.ErrorIs(t, err, ErrPrefixTooLong)
}

func TestParsePayload(t *testing.T) {
	payload, err := ParsePayload(DefaultPingPayload)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0F, 0x0F, 0x0F, 0x0F}, payload)

	_, err = ParsePayload("")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestAddressValidate(t *testing.T) {
	assert.NoError(t, Address{1, 2}.Validate())
	assert.NoError(t, Address{1, 2, 3, 4, 5}.Validate())
	assert.ErrorIs(t, Address{1}.Validate(), ErrAddressTooShort)
	assert.ErrorIs(t, Address{1, 2, 3, 4, 5, 6}.Validate(), ErrAddressTooLong)
}

func TestAddressHelpers(t *testing.T) {
	base := Address{0x00, 0x11, 0x22}
	probe := base.WithByte(0, 0x0F)

	assert.Equal(t, Address{0x0F, 0x11, 0x22}, probe)
	assert.Equal(t, byte(0x00), base[0], "WithByte must not modify the base")
	assert.True(t, probe.Equal(Address{0x0F, 0x11, 0x22}))
	assert.False(t, probe.Equal(base))
	assert.Negative(t, Address{0x01, 0x00}.Compare(Address{0x00, 0x01}))
}

func TestChannels(t *testing.T) {
	defaults := DefaultChannels()
	assert.Len(t, defaults, 82)
	assert.Equal(t, 2, defaults[0])
	assert.Equal(t, 83, defaults[len(defaults)-1])

	channels, err := ParseChannels("7, 3,10-12")
	require.NoError(t, err)
	assert.Equal(t, ChannelSet{7, 3, 10, 11, 12}, channels, "declaration order is preserved")

	_, err = ParseChannels("")
	assert.ErrorIs(t, err, ErrNoChannels)

	_, err = ParseChannels("126")
	assert.ErrorIs(t, err, ErrChannelOutOfRange)

	_, err = ParseChannels("9-3")
	assert.True(t, IsConfigError(err))

	// Out of range bounds fail before the range is expanded
	for _, input := range []string{"0-100000000", "2,0-9999999999999", "-5-3"} {
		_, err = ParseChannels(input)
		assert.True(t, IsConfigError(err), "input=%q", input)
	}
	_, err = ParseChannels("0-100000000")
	assert.ErrorIs(t, err, ErrChannelOutOfRange)
	assert.Contains(t, err.Error(), "100000000")
}

func TestAckTimeoutQuantization(t *testing.T) {
	tests := []struct {
		us   int
		want AckTimeout
	}{
		{0, 0},
		{250, 0},
		{300, 0},
		{400, 1},
		{1000, 3},
		{4000, 15},
		{4500, 15},
		{-10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AckTimeoutFromMicros(tt.us), "us=%d", tt.us)
	}

	assert.Equal(t, 4000, AckTimeout(15).Micros())
	assert.Equal(t, 250*time.Microsecond, AckTimeout(0).Duration())
}

func TestClampRetries(t *testing.T) {
	assert.Equal(t, Retries(15), ClampRetries(20))
	assert.Equal(t, Retries(0), ClampRetries(-1))
	assert.Equal(t, Retries(3), ClampRetries(3))
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "address", Value: "AB", Err: ErrAddressTooShort}
	assert.Equal(t, `invalid address "AB": address must be at least 2 bytes`, err.Error())
	assert.True(t, errors.Is(err, ErrAddressTooShort))
}
