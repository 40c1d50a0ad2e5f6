package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// LinkTypeESB is DLT_USER0. Each record is
//
//	channel(1) | address length(1) | address | payload
const LinkTypeESB = layers.LinkType(147)

const pcapSnapLen = 256

// PcapSink records packets to a pcap capture
type PcapSink struct {
	mu     sync.Mutex
	writer *pcapgo.Writer
	closer io.Closer
}

// CreatePcap creates path and writes the capture header
func CreatePcap(path string) (*PcapSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file: %w", err)
	}

	sink, err := NewPcapSink(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	sink.closer = f
	return sink, nil
}

// NewPcapSink writes a capture to w. Closing the sink does not close w.
func NewPcapSink(w io.Writer) (*PcapSink, error) {
	writer := pcapgo.NewWriter(w)
	if err := writer.WriteFileHeader(pcapSnapLen, LinkTypeESB); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &PcapSink{writer: writer}, nil
}

func (s *PcapSink) WritePacket(packet esb.Packet) error {
	data := EncodeRecord(packet)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writer.WritePacket(gopacket.CaptureInfo{
		Timestamp:     packet.Timestamp,
		CaptureLength: len(data),
		Length:        len(data),
	}, data)
}

func (s *PcapSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// EncodeRecord lays out packet as a LinkTypeESB record
func EncodeRecord(packet esb.Packet) []byte {
	data := make([]byte, 0, 2+len(packet.Address)+len(packet.Payload))
	data = append(data, byte(packet.Channel), byte(len(packet.Address)))
	data = append(data, packet.Address...)
	return append(data, packet.Payload...)
}

// DecodeRecord splits a LinkTypeESB record into channel, address and payload
func DecodeRecord(data []byte) (channel int, address, payload []byte, err error) {
	if len(data) < 2 || len(data) < 2+int(data[1]) {
		return 0, nil, nil, fmt.Errorf("short record: %d bytes", len(data))
	}
	n := 2 + int(data[1])
	return int(data[0]), data[2:n], data[n:], nil
}
