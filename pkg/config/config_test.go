package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/tools"
)

func TestDefaultConversions(t *testing.T) {
	f := Default()
	f.Sniffer.Address = "E7:E7:E7:E7:01"
	f.Mapper.Address = "A0:B1:C2"

	channels, err := f.ChannelSet()
	require.NoError(t, err)
	assert.Len(t, channels, 82)
	assert.Equal(t, 2, channels[0])
	assert.Equal(t, 83, channels[len(channels)-1])

	sniffer, err := f.SnifferConfig()
	require.NoError(t, err)
	assert.Equal(t, esb.Address{0x01, 0xE7, 0xE7, 0xE7, 0xE7}, sniffer.Address)
	assert.Equal(t, 100*time.Millisecond, sniffer.Timeout)
	assert.Equal(t, esb.AckTimeout(0), sniffer.AckTimeout)
	assert.Equal(t, esb.Retries(1), sniffer.Retries)
	assert.Equal(t, []byte{0x0F, 0x0F, 0x0F, 0x0F}, sniffer.PingPayload)

	scanner, err := f.ScannerConfig()
	require.NoError(t, err)
	assert.Empty(t, scanner.Prefix)
	assert.Equal(t, 100*time.Millisecond, scanner.DwellTime)

	mapper, err := f.MapperConfig()
	require.NoError(t, err)
	assert.Equal(t, esb.Address{0xC2, 0xB1, 0xA0}, mapper.Address)
	assert.Equal(t, 2, mapper.Passes)

	tone, err := f.ToneTestConfig()
	require.NoError(t, err)
	assert.Equal(t, tools.ToneTest{Channel: 2}, tone)

	opts := f.LoggingOptions()
	assert.False(t, opts.Verbose)
	assert.Empty(t, opts.File)
}

func TestConversionErrors(t *testing.T) {
	f := Default()

	_, err := f.SnifferConfig()
	assert.ErrorIs(t, err, esb.ErrAddressTooShort, "no address configured")

	f.Mapper.Address = "01"
	_, err = f.MapperConfig()
	assert.True(t, esb.IsConfigError(err))
	assert.ErrorIs(t, err, esb.ErrAddressTooShort)

	f.Mapper.Address = "01:02"
	f.Mapper.Passes = 0
	_, err = f.MapperConfig()
	assert.ErrorIs(t, err, esb.ErrInvalidPasses)

	f.Scanner.Prefix = "01:02:03:04:05:06"
	_, err = f.ScannerConfig()
	assert.ErrorIs(t, err, esb.ErrPrefixTooLong)

	f.Channels = "2,200"
	_, err = f.ToneTestConfig()
	assert.ErrorIs(t, err, esb.ErrChannelOutOfRange)

	channel := 126
	f.ToneTest.Channel = &channel
	_, err = f.ToneTestConfig()
	assert.ErrorIs(t, err, esb.ErrChannelOutOfRange)

	f.Sniffer.Address = "zz"
	_, err = f.SnifferConfig()
	assert.ErrorIs(t, err, esb.ErrInvalidHex)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
channels = "5,6,7"

[device]
index = 1
lna = true

[sniffer]
address = "E7:E7:E7:E7:01"
timeout_ms = 250.0

[tone_test]
channel = 40
`), 0644))

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, f.Device.Index)
	assert.True(t, f.Device.LNA)
	assert.Equal(t, "5,6,7", f.Channels)
	require.NotNil(t, f.ToneTest.Channel)
	assert.Equal(t, 40, *f.ToneTest.Channel)

	sniffer, err := f.SnifferConfig()
	require.NoError(t, err)
	assert.Equal(t, esb.ChannelSet{5, 6, 7}, sniffer.Channels)
	assert.Equal(t, 250*time.Millisecond, sniffer.Timeout)
	assert.Equal(t, esb.DefaultPingPayload, f.Sniffer.PingPayload, "unset keys keep defaults")
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
channels: "2-10"
log:
  verbose: true
  file: /tmp/nrf24.log
scanner:
  prefix: "A1:B2"
  dwell_ms: 50
`), 0644))

	f, err := Load(path)
	require.NoError(t, err)

	assert.True(t, f.LoggingOptions().Verbose)
	assert.Equal(t, "/tmp/nrf24.log", f.LoggingOptions().File)

	scanner, err := f.ScannerConfig()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA1, 0xB2}, scanner.Prefix)
	assert.Equal(t, 50*time.Millisecond, scanner.DwellTime)
	assert.Len(t, scanner.Channels, 9)
}

func TestSaveAndLoad(t *testing.T) {
	channel := 76
	want := Default()
	want.Device.Selector = "1:10"
	want.Mapper.Address = "E7:E7:E7:E7:00"
	want.Sniffer.Pcap = "capture.pcap"
	want.ToneTest.Channel = &channel

	for _, name := range []string{"out.toml", "out.yaml", "nested/out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(want, path))

			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, Save(Default(), path), ErrUnsupportedFormat)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	f, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}
