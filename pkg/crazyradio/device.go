package crazyradio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

// toneExitTimeout bounds leaving tone-test mode on Close
const toneExitTimeout = 250 * time.Millisecond

// inEndpoint and outEndpoint are the parts of the gousb endpoints used for
// the command protocol
type inEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

type outEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Device represents a CrazyRadio USB dongle
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         inEndpoint
	epOut        outEndpoint
	Serial       string
	Manufacturer string
	Product      string
	Bus          int
	Address      int

	mu   sync.Mutex
	mode Mode
}

// FindAllDevices finds all connected CrazyRadio dongles
func FindAllDevices(context *gousb.Context) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := context.OpenDevices(func(descriptor *gousb.DeviceDesc) bool {
		return descriptor.Vendor == gousb.ID(VendorID) && descriptor.Product == gousb.ID(ProductID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func wrapDevice(usbDev *gousb.Device) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	usbDev.SetAutoDetach(true)

	config, err := usbDev.Config(ConfigNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	iface, err := config.Interface(InterfaceNumber, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}

	epIn, err := iface.InEndpoint(EPInNumber)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}

	epOut, err := iface.OutEndpoint(EPOutNumber)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	desc := usbDev.Desc
	return &Device{
		usbDevice:    usbDev,
		usbConfig:    config,
		usbInterface: iface,
		epIn:         epIn,
		epOut:        epOut,
		Serial:       serial,
		Manufacturer: manufacturer,
		Product:      product,
		Bus:          desc.Bus,
		Address:      desc.Address,
	}, nil
}

// Close releases the device. A radio left in tone-test mode keeps
// transmitting a carrier, so Close switches it back to promiscuous mode first.
func (d *Device) Close() error {
	var toneErr error
	if d.epOut != nil && d.Mode() == ModeToneTest {
		toneErr = d.exitToneTest()
	}

	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	var usbErr error
	if d.usbDevice != nil {
		usbErr = d.usbDevice.Close()
	}
	return errors.Join(toneErr, usbErr)
}

// exitToneTest switches a transmitting radio back to promiscuous mode and
// waits for the firmware's reply
func (d *Device) exitToneTest() error {
	if _, err := d.Send(CmdEnterPromiscuousMode, lengthPrefixed(nil), toneExitTimeout); err != nil {
		return fmt.Errorf("failed to leave tone test mode: %w", err)
	}
	d.setMode(ModePromiscuous)
	return nil
}

// Reset performs a USB port reset
func (d *Device) Reset() error {
	return d.usbDevice.Reset()
}

// Mode returns the last mode entered through this handle
func (d *Device) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Device) setMode(mode Mode) {
	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

// Send writes a command to EP1 and reads the single response packet
// Protocol: cmd(1) + args
func (d *Device) Send(cmd uint8, args []byte, timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timeout == 0 {
		timeout = USBTimeout
	}

	packet := encodeCommand(cmd, args...)

	writeCtx, writeCancel := context.WithTimeout(context.Background(), timeout)
	n, err := d.epOut.WriteContext(writeCtx, packet)
	writeCancel()
	if err != nil {
		if writeCtx.Err() != nil || isTimeout(err) {
			return nil, fmt.Errorf("write timeout (cmd 0x%02X): %w", cmd, err)
		}
		return nil, fmt.Errorf("failed to write to EP1: %w", err)
	}
	if n != len(packet) {
		return nil, fmt.Errorf("short write: wrote %d of %d bytes", n, len(packet))
	}

	buf := make([]byte, EPMaxPacketSize)
	readCtx, readCancel := context.WithTimeout(context.Background(), timeout)
	n, err = d.epIn.ReadContext(readCtx, buf)
	readCancel()
	if err != nil {
		if readCtx.Err() != nil || isTimeout(err) {
			return nil, fmt.Errorf("read timeout (cmd 0x%02X): %w", cmd, err)
		}
		return nil, fmt.Errorf("failed to read from EP1: %w", err)
	}

	return buf[:n], nil
}

func isTimeout(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "cancel")
}

func encodeCommand(cmd uint8, args ...byte) []byte {
	packet := make([]byte, 1+len(args))
	packet[0] = cmd
	copy(packet[1:], args)
	return packet
}
