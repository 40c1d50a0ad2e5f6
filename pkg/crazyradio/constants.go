// Package crazyradio drives a CrazyRadio PA dongle running the nRF24
// research firmware over USB.
package crazyradio

import "time"

// USB Device Identifiers
const (
	VendorID  = 0x1915
	ProductID = 0x0102 // CrazyRadio PA, research firmware
)

// USB Endpoint Configuration
const (
	ConfigNumber    = 1
	InterfaceNumber = 0
	EPOutNumber     = 1 // EP1 OUT (host to device), 0x01
	EPInNumber      = 1 // EP1 IN (device to host), 0x81
	EPMaxPacketSize = 64
)

// USBTimeout bounds every command write and response read
const USBTimeout = 2500 * time.Millisecond

// Firmware commands
const (
	CmdTransmitPayload         = 0x04 // Transmit with auto-ack, returns ack status
	CmdEnterSnifferMode        = 0x05 // ESB address lock, no auto-ack
	CmdEnterPromiscuousMode    = 0x06 // Pseudo-promiscuous ESB capture
	CmdEnterToneTestMode       = 0x07 // Continuous carrier
	CmdTransmitACKPayload      = 0x08 // Queue an ACK payload
	CmdSetChannel              = 0x09 // Tune RF_CH
	CmdGetChannel              = 0x0A // Read RF_CH
	CmdEnableLNAPA             = 0x0B // Enable the PA/LNA front end
	CmdTransmitPayloadGeneric  = 0x0C
	CmdEnterPromiscuousGeneric = 0x0D
	CmdReceivePayload          = 0x12 // Read one pending frame
)

// MaxChannel is the highest RF_CH value the firmware accepts
const MaxChannel = 125

// Mode is the firmware radio mode
type Mode int

const (
	ModeUnknown Mode = iota
	ModePromiscuous
	ModeSniffer
	ModeToneTest
)

func (m Mode) String() string {
	switch m {
	case ModePromiscuous:
		return "promiscuous"
	case ModeSniffer:
		return "sniffer"
	case ModeToneTest:
		return "tone-test"
	default:
		return "unknown"
	}
}
