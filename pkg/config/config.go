// Package config holds the settings file shared by the nRF24 tools and
// converts it into the per-tool configurations.
package config

import (
	"fmt"
	"time"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/follower"
	"github.com/herlein/nrf24tools/pkg/logging"
	"github.com/herlein/nrf24tools/pkg/mapper"
	"github.com/herlein/nrf24tools/pkg/sweeper"
	"github.com/herlein/nrf24tools/pkg/tools"
)

// File is the on-disk tool configuration. Durations are plain numbers in
// the units the command-line flags use.
type File struct {
	Device   DeviceSection   `toml:"device" yaml:"device" json:"device"`
	Log      LogSection      `toml:"log" yaml:"log" json:"log"`
	Channels string          `toml:"channels" yaml:"channels" json:"channels"`
	Sniffer  SnifferSection  `toml:"sniffer" yaml:"sniffer" json:"sniffer"`
	Scanner  ScannerSection  `toml:"scanner" yaml:"scanner" json:"scanner"`
	Mapper   MapperSection   `toml:"mapper" yaml:"mapper" json:"mapper"`
	ToneTest ToneTestSection `toml:"tone_test" yaml:"tone_test" json:"tone_test"`
}

// DeviceSection selects the dongle
type DeviceSection struct {
	Index    int    `toml:"index" yaml:"index" json:"index"`
	Selector string `toml:"selector" yaml:"selector" json:"selector,omitempty"` // overrides Index when set
	LNA      bool   `toml:"lna" yaml:"lna" json:"lna"`
}

type LogSection struct {
	Verbose    bool   `toml:"verbose" yaml:"verbose" json:"verbose"`
	File       string `toml:"file" yaml:"file" json:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" json:"max_backups"`
	Packets    bool   `toml:"packets" yaml:"packets" json:"packets"` // log every captured packet
}

type SnifferSection struct {
	Address      string  `toml:"address" yaml:"address" json:"address"`
	TimeoutMs    float64 `toml:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	AckTimeoutUs int     `toml:"ack_timeout_us" yaml:"ack_timeout_us" json:"ack_timeout_us"`
	Retries      int     `toml:"retries" yaml:"retries" json:"retries"`
	PingPayload  string  `toml:"ping_payload" yaml:"ping_payload" json:"ping_payload"`
	Pcap         string  `toml:"pcap" yaml:"pcap" json:"pcap,omitempty"`
}

type ScannerSection struct {
	Prefix  string  `toml:"prefix" yaml:"prefix" json:"prefix"`
	DwellMs float64 `toml:"dwell_ms" yaml:"dwell_ms" json:"dwell_ms"`
	Pcap    string  `toml:"pcap" yaml:"pcap" json:"pcap,omitempty"`
}

type MapperSection struct {
	Address      string `toml:"address" yaml:"address" json:"address"`
	Passes       int    `toml:"passes" yaml:"passes" json:"passes"`
	AckTimeoutUs int    `toml:"ack_timeout_us" yaml:"ack_timeout_us" json:"ack_timeout_us"`
	Retries      int    `toml:"retries" yaml:"retries" json:"retries"`
	PingPayload  string `toml:"ping_payload" yaml:"ping_payload" json:"ping_payload"`
}

// ToneTestSection sets the carrier channel; nil means the first channel
// of the channel set
type ToneTestSection struct {
	Channel *int `toml:"channel,omitempty" yaml:"channel,omitempty" json:"channel,omitempty"`
}

// Default returns the settings the tools use when nothing is configured
func Default() *File {
	return &File{
		Channels: fmt.Sprintf("%d-%d", esb.DefaultFirstChannel, esb.DefaultLastChannel),
		Log: LogSection{
			MaxSizeMB:  logging.DefaultMaxSizeMB,
			MaxBackups: logging.DefaultMaxBackups,
		},
		Sniffer: SnifferSection{
			TimeoutMs:    float64(esb.DefaultTimeout / time.Millisecond),
			AckTimeoutUs: esb.DefaultAckTimeoutMicros,
			Retries:      esb.DefaultRetries,
			PingPayload:  esb.DefaultPingPayload,
		},
		Scanner: ScannerSection{
			DwellMs: float64(esb.DefaultDwellTime / time.Millisecond),
		},
		Mapper: MapperSection{
			Passes:       mapper.DefaultPasses,
			AckTimeoutUs: esb.DefaultAckTimeoutMicros,
			Retries:      esb.DefaultRetries,
			PingPayload:  esb.DefaultPingPayload,
		},
	}
}

// ChannelSet parses the channel list
func (f *File) ChannelSet() (esb.ChannelSet, error) {
	return esb.ParseChannels(f.Channels)
}

// LoggingOptions returns the logger settings
func (f *File) LoggingOptions() logging.Options {
	return logging.Options{
		Verbose:    f.Log.Verbose,
		File:       f.Log.File,
		MaxSizeMB:  f.Log.MaxSizeMB,
		MaxBackups: f.Log.MaxBackups,
	}
}

// SnifferConfig builds the follower configuration. Callbacks and the
// logger are left for the caller.
func (f *File) SnifferConfig() (*follower.Config, error) {
	address, err := esb.ParseAddress(f.Sniffer.Address)
	if err != nil {
		return nil, err
	}
	channels, err := f.ChannelSet()
	if err != nil {
		return nil, err
	}
	payload, err := esb.ParsePayload(f.Sniffer.PingPayload)
	if err != nil {
		return nil, err
	}

	config := follower.DefaultConfig()
	config.Address = address
	config.Channels = channels
	config.Timeout = millis(f.Sniffer.TimeoutMs)
	config.AckTimeout = esb.AckTimeoutFromMicros(f.Sniffer.AckTimeoutUs)
	config.Retries = esb.ClampRetries(f.Sniffer.Retries)
	config.PingPayload = payload
	return config, config.Validate()
}

// ScannerConfig builds the sweeper configuration
func (f *File) ScannerConfig() (*sweeper.Config, error) {
	prefix, err := esb.ParsePrefix(f.Scanner.Prefix)
	if err != nil {
		return nil, err
	}
	channels, err := f.ChannelSet()
	if err != nil {
		return nil, err
	}

	config := sweeper.DefaultConfig()
	config.Prefix = prefix
	config.Channels = channels
	config.DwellTime = millis(f.Scanner.DwellMs)
	return config, config.Validate()
}

// MapperConfig builds the address prober configuration
func (f *File) MapperConfig() (*mapper.Config, error) {
	address, err := esb.ParseAddress(f.Mapper.Address)
	if err != nil {
		return nil, err
	}
	channels, err := f.ChannelSet()
	if err != nil {
		return nil, err
	}
	payload, err := esb.ParsePayload(f.Mapper.PingPayload)
	if err != nil {
		return nil, err
	}

	config := mapper.DefaultConfig()
	config.Address = address
	config.Channels = channels
	config.Passes = f.Mapper.Passes
	config.AckTimeout = esb.AckTimeoutFromMicros(f.Mapper.AckTimeoutUs)
	config.Retries = esb.ClampRetries(f.Mapper.Retries)
	config.PingPayload = payload
	return config, config.Validate()
}

// ToneTestConfig builds the tone test tool
func (f *File) ToneTestConfig() (tools.ToneTest, error) {
	if f.ToneTest.Channel != nil {
		tool := tools.ToneTest{Channel: *f.ToneTest.Channel}
		return tool, tool.Validate()
	}

	channels, err := f.ChannelSet()
	if err != nil {
		return tools.ToneTest{}, err
	}
	return tools.ToneTest{Channel: channels[0]}, nil
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
