package crazyradio

import (
	"fmt"

	"github.com/herlein/nrf24tools/pkg/esb"
)

var _ esb.Radio = (*Device)(nil)

// SetChannel tunes the radio. Channels above 125 are clamped by the firmware
// protocol, so they are clamped here too.
func (d *Device) SetChannel(channel int) error {
	_, err := d.Send(CmdSetChannel, []byte{clampChannel(channel)}, USBTimeout)
	if err != nil {
		return fmt.Errorf("failed to set channel %d: %w", channel, err)
	}
	return nil
}

// GetChannel returns the channel the firmware is tuned to
func (d *Device) GetChannel() (int, error) {
	response, err := d.Send(CmdGetChannel, nil, USBTimeout)
	if err != nil {
		return 0, fmt.Errorf("failed to get channel: %w", err)
	}
	if len(response) < 1 {
		return 0, fmt.Errorf("empty channel response")
	}
	return int(response[0]), nil
}

// EnterPromiscuousMode captures any ESB frame whose address starts with prefix
func (d *Device) EnterPromiscuousMode(prefix []byte) error {
	if len(prefix) > esb.AddressWidth {
		return fmt.Errorf("%w: %d bytes", esb.ErrPrefixTooLong, len(prefix))
	}
	if _, err := d.Send(CmdEnterPromiscuousMode, lengthPrefixed(prefix), USBTimeout); err != nil {
		return fmt.Errorf("failed to enter promiscuous mode: %w", err)
	}
	d.setMode(ModePromiscuous)
	return nil
}

// EnterSnifferMode locks onto address with auto-ack disabled
func (d *Device) EnterSnifferMode(address esb.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	if _, err := d.Send(CmdEnterSnifferMode, lengthPrefixed(address), USBTimeout); err != nil {
		return fmt.Errorf("failed to enter sniffer mode: %w", err)
	}
	d.setMode(ModeSniffer)
	return nil
}

// EnterToneTestMode starts a continuous carrier on the current channel
func (d *Device) EnterToneTestMode() error {
	if _, err := d.Send(CmdEnterToneTestMode, nil, USBTimeout); err != nil {
		return fmt.Errorf("failed to enter tone test mode: %w", err)
	}
	d.setMode(ModeToneTest)
	return nil
}

// TransmitPayload sends payload and reports whether it was acknowledged
func (d *Device) TransmitPayload(payload []byte, timeout esb.AckTimeout, retries esb.Retries) (bool, error) {
	response, err := d.Send(CmdTransmitPayload, transmitArgs(payload, timeout, retries), USBTimeout)
	if err != nil {
		return false, fmt.Errorf("transmit failed: %w", err)
	}
	return acked(response), nil
}

// ReceivePayload reads one pending frame. In sniffer mode the first byte is
// a status byte; in promiscuous mode the frame starts with the address.
func (d *Device) ReceivePayload() ([]byte, error) {
	response, err := d.Send(CmdReceivePayload, nil, USBTimeout)
	if err != nil {
		return nil, fmt.Errorf("receive failed: %w", err)
	}
	return response, nil
}

// EnableLNA turns on the CrazyRadio PA's low-noise amplifier
func (d *Device) EnableLNA() error {
	if _, err := d.Send(CmdEnableLNAPA, nil, USBTimeout); err != nil {
		return fmt.Errorf("failed to enable LNA: %w", err)
	}
	return nil
}

func clampChannel(channel int) byte {
	if channel < 0 {
		return 0
	}
	if channel > MaxChannel {
		return MaxChannel
	}
	return byte(channel)
}

func lengthPrefixed(data []byte) []byte {
	args := make([]byte, 1+len(data))
	args[0] = byte(len(data))
	copy(args[1:], data)
	return args
}

// transmitArgs: len(1) + ack timeout step(1) + retries(1) + payload
func transmitArgs(payload []byte, timeout esb.AckTimeout, retries esb.Retries) []byte {
	args := make([]byte, 3+len(payload))
	args[0] = byte(len(payload))
	args[1] = byte(timeout)
	args[2] = byte(retries)
	copy(args[3:], payload)
	return args
}

func acked(response []byte) bool {
	return len(response) > 0 && response[0] > 0
}
