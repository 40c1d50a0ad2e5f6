package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/logging"
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	channelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	addressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	payloadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF7DB"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// TextSink prints one line per packet:
//
//	[2024-01-01 12:00:00.000]  ch  len  address  payload
type TextSink struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewTextSink writes to w, styled when w is a terminal
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w, styled: IsTerminal(w)}
}

// NewPlainTextSink writes to w without styling
func NewPlainTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) WritePacket(packet esb.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintln(s.w, s.format(packet))
	return err
}

func (s *TextSink) format(packet esb.Packet) string {
	ts := "[" + packet.Timestamp.Format(logging.TimeFormat) + "]"
	channel := fmt.Sprintf("%2d", packet.Channel)
	length := fmt.Sprintf("%2d", packet.PayloadLength())
	address := esb.FormatHex(packet.Address)
	payload := esb.FormatHex(packet.Payload)

	if s.styled {
		ts = timeStyle.Render(ts)
		channel = channelStyle.Render(channel)
		address = addressStyle.Render(address)
		payload = payloadStyle.Render(payload)
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s", ts, channel, length, address, payload)
}

func (s *TextSink) Close() error { return nil }

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintAddresses writes the deduplicated discovery result
func PrintAddresses(w io.Writer, addresses []esb.Address) error {
	styled := IsTerminal(w)

	header := fmt.Sprintf("Found %d address(es)", len(addresses))
	if styled {
		header = headerStyle.Render(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, address := range addresses {
		text := address.String()
		if styled {
			text = addressStyle.Render(text)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", text); err != nil {
			return err
		}
	}
	return nil
}

// PrintDevices writes the per-address summary of a capture
func PrintDevices(w io.Writer, devices []DeviceInfo) error {
	styled := IsTerminal(w)

	header := fmt.Sprintf("Heard %d device(s)", len(devices))
	if styled {
		header = headerStyle.Render(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, d := range devices {
		address := esb.FormatHex(d.Address)
		if styled {
			address = addressStyle.Render(address)
		}
		channels := esb.ChannelSet(d.Channels).String()
		if _, err := fmt.Fprintf(w, "  %s  packets=%d  max_payload=%d  channels=%s\n",
			address, d.PacketCount, d.MaxPayload, channels); err != nil {
			return err
		}
	}
	return nil
}
