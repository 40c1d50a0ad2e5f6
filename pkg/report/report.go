// Package report delivers captured packets and discovery results to the
// user: log lines, terminal text and pcap files.
package report

import (
	"errors"
	"log/slog"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/logging"
)

// Sink consumes captured packets
type Sink interface {
	WritePacket(packet esb.Packet) error
	Close() error
}

// Callback adapts sink to the components' OnPacket hooks. Write errors
// are logged and the capture keeps going.
func Callback(sink Sink, logger *slog.Logger) func(esb.Packet) {
	logger = logging.OrDiscard(logger)
	return func(packet esb.Packet) {
		if err := sink.WritePacket(packet); err != nil {
			logger.Warn("failed to write packet", "channel", packet.Channel, "error", err)
		}
	}
}

// LogSink writes each packet as a structured log record at Info
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.OrDiscard(logger)}
}

func (s *LogSink) WritePacket(packet esb.Packet) error {
	s.logger.Info("packet",
		"channel", packet.Channel,
		"length", packet.PayloadLength(),
		"address", esb.FormatHex(packet.Address),
		"payload", esb.FormatHex(packet.Payload),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

type multiSink []Sink

// Multi fans each packet out to every sink. All sinks are written even
// when one fails; the errors are joined.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) WritePacket(packet esb.Packet) error {
	var errs []error
	for _, sink := range m {
		if err := sink.WritePacket(packet); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiSink) Close() error {
	var errs []error
	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
