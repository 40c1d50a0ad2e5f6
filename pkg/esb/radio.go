// Package esb holds the data model shared by the nRF24 tools: addresses,
// channel sets, ack timing and the radio link they all drive.
package esb

import "time"

// StatusValid is the leading status byte of a frame received in sniffer mode
const StatusValid = 0x00

// Radio is the transceiver link. The three modes are mutually exclusive;
// entering one implicitly exits any other. A single caller owns the radio.
type Radio interface {
	SetChannel(channel int) error
	EnterPromiscuousMode(prefix []byte) error
	EnterSnifferMode(address Address) error
	EnterToneTestMode() error

	// TransmitPayload sends payload and waits for an auto-ack. false means
	// no ack arrived; an error means the link itself failed.
	TransmitPayload(payload []byte, timeout AckTimeout, retries Retries) (bool, error)

	// ReceivePayload returns the next pending frame, or an empty or
	// status-prefixed frame when nothing is pending.
	ReceivePayload() ([]byte, error)

	EnableLNA() error
}

// Packet is a captured frame
type Packet struct {
	Timestamp time.Time
	Channel   int
	Address   []byte // display order, most significant byte first
	Payload   []byte
}

// PayloadLength returns the payload size in bytes
func (p Packet) PayloadLength() int {
	return len(p.Payload)
}
