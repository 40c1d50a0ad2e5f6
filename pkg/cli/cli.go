// Package cli holds the command-line plumbing shared by the radio tools:
// common flags, config overrides and opening the dongle.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gousb"

	"github.com/herlein/nrf24tools/pkg/config"
	"github.com/herlein/nrf24tools/pkg/crazyradio"
	"github.com/herlein/nrf24tools/pkg/logging"
	"github.com/herlein/nrf24tools/pkg/report"
)

// Common is the flag set every radio tool accepts
type Common struct {
	fs *flag.FlagSet

	Channels   string
	Verbose    bool
	LNA        bool
	Index      int
	Device     string
	ConfigPath string
	LogFile    string
	LogPackets bool
}

// Register adds the common flags to fs
func Register(fs *flag.FlagSet) *Common {
	c := &Common{fs: fs}
	fs.StringVar(&c.Channels, "c", "2-83", "RF channels, e.g. \"2-83\" or \"5,10,20-25\"")
	fs.BoolVar(&c.Verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&c.LNA, "l", false, "Enable the LNA (for CrazyRadio PA dongles)")
	fs.IntVar(&c.Index, "i", 0, "Dongle index")
	fs.StringVar(&c.Device, "device", "", crazyradio.DeviceFlagUsage())
	fs.StringVar(&c.ConfigPath, "config", "", "Config file (.toml, .yaml, .json)")
	fs.StringVar(&c.LogFile, "log", "", "Also write log output to this file (rotated)")
	fs.BoolVar(&c.LogPackets, "log-packets", false, "Also write every packet to the log")
	return c
}

// IsSet reports whether the named flag was given on the command line
func (c *Common) IsSet(name string) bool {
	set := false
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Load reads the config file and applies the common flags that were set
// explicitly. Flags left at their defaults do not override the file.
func (c *Common) Load() (*config.File, error) {
	file, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "c":
			file.Channels = c.Channels
		case "v":
			file.Log.Verbose = c.Verbose
		case "l":
			file.Device.LNA = c.LNA
		case "i":
			file.Device.Index = c.Index
			file.Device.Selector = ""
		case "device":
			file.Device.Selector = c.Device
		case "log":
			file.Log.File = c.LogFile
		case "log-packets":
			file.Log.Packets = c.LogPackets
		}
	})

	return file, nil
}

// Selector returns the dongle selector, preferring an explicit selector
// string over the index
func Selector(file *config.File) crazyradio.DeviceSelector {
	if file.Device.Selector != "" {
		return crazyradio.DeviceSelector(file.Device.Selector)
	}
	return crazyradio.IndexSelector(file.Device.Index)
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Session is an open dongle plus the logger the tool runs with
type Session struct {
	Config *config.File
	Logger *slog.Logger
	Radio  *crazyradio.Device

	usb       *gousb.Context
	logCloser io.Closer
}

// Open builds the logger and opens the selected dongle
func Open(file *config.File) (*Session, error) {
	logger, logCloser, err := logging.New(file.LoggingOptions())
	if err != nil {
		return nil, err
	}

	if channels, err := file.ChannelSet(); err == nil {
		logger.Debug("using channels", "channels", channels.String())
	}

	usb := gousb.NewContext()
	radio, err := crazyradio.SelectDevice(usb, Selector(file))
	if err != nil {
		usb.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to open device: %w", err)
	}
	logger.Debug("opened dongle", "device", radio.String(), "bus", radio.Bus, "address", radio.Address)

	return &Session{
		Config:    file,
		Logger:    logger,
		Radio:     radio,
		usb:       usb,
		logCloser: logCloser,
	}, nil
}

// Close releases the dongle, the USB context and the log file
func (s *Session) Close() error {
	err := s.Radio.Close()
	s.usb.Close()
	s.logCloser.Close()
	return err
}

// PacketLogger returns the logger packets are mirrored to, or nil when
// packet logging is off
func (s *Session) PacketLogger() *slog.Logger {
	if !s.Config.Log.Packets {
		return nil
	}
	return s.Logger
}

// PacketSink prints packets to out. When pcapPath is set they are recorded
// to a pcap file as well, and when logger is non-nil each one is logged.
func PacketSink(out io.Writer, pcapPath string, logger *slog.Logger) (report.Sink, error) {
	sinks := []report.Sink{report.NewTextSink(out)}
	if logger != nil {
		sinks = append(sinks, report.NewLogSink(logger))
	}
	if pcapPath != "" {
		pcap, err := report.CreatePcap(pcapPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pcap)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return report.Multi(sinks...), nil
}

// Fatal prints err and exits with status 1
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
