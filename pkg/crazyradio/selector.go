package crazyradio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to identify a CrazyRadio dongle
// Supported formats:
//   - ""           : Use first available dongle
//   - "serial"     : Match by serial number
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth dongle, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// IndexSelector returns the selector for the Nth dongle
func IndexSelector(index int) DeviceSelector {
	return DeviceSelector(fmt.Sprintf("#%d", index))
}

type selectorKind int

const (
	selectFirst selectorKind = iota
	selectIndex
	selectBusAddr
	selectSerial
)

type parsedSelector struct {
	kind   selectorKind
	index  int
	bus    int
	addr   int
	serial string
}

func (s DeviceSelector) parse() (parsedSelector, error) {
	sel := string(s)

	if sel == "" {
		return parsedSelector{kind: selectFirst}, nil
	}

	if strings.HasPrefix(sel, "#") {
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return parsedSelector{}, fmt.Errorf("invalid device index: %s", sel)
		}
		return parsedSelector{kind: selectIndex, index: index}, nil
	}

	if busStr, addrStr, ok := strings.Cut(sel, ":"); ok {
		bus, err := strconv.Atoi(busStr)
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid bus number: %s", busStr)
		}
		addr, err := strconv.Atoi(addrStr)
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid address number: %s", addrStr)
		}
		return parsedSelector{kind: selectBusAddr, bus: bus, addr: addr}, nil
	}

	return parsedSelector{kind: selectSerial, serial: sel}, nil
}

// pick returns the index of the selected dongle among candidates
func (p parsedSelector) pick(devices []*Device) (int, error) {
	if len(devices) == 0 {
		return -1, fmt.Errorf("no CrazyRadio dongles found")
	}

	switch p.kind {
	case selectFirst:
		return 0, nil

	case selectIndex:
		if p.index >= len(devices) {
			return -1, fmt.Errorf("device index %d out of range (found %d devices)", p.index, len(devices))
		}
		return p.index, nil

	case selectBusAddr:
		for i, d := range devices {
			if d.Bus == p.bus && d.Address == p.addr {
				return i, nil
			}
		}
		return -1, fmt.Errorf("no CrazyRadio found at bus %d address %d", p.bus, p.addr)

	default:
		found := -1
		for i, d := range devices {
			if d.Serial != p.serial {
				continue
			}
			if found >= 0 {
				return -1, fmt.Errorf("multiple devices found with serial %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", p.serial)
			}
			found = i
		}
		if found < 0 {
			return -1, fmt.Errorf("no CrazyRadio found with serial %s", p.serial)
		}
		return found, nil
	}
}

// SelectDevice opens the CrazyRadio dongle matching the selector and closes
// every other dongle it had to open while enumerating.
func SelectDevice(context *gousb.Context, selector DeviceSelector) (*Device, error) {
	parsed, err := selector.parse()
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(context)
	if err != nil {
		return nil, err
	}

	selected, err := parsed.pick(devices)
	for i, d := range devices {
		if i != selected {
			d.Close()
		}
	}
	if err != nil {
		return nil, err
	}

	return devices[selected], nil
}

// DeviceFlagUsage returns usage text for the -device flag
func DeviceFlagUsage() string {
	return `Dongle selector. Formats:
    ""        - Use first available dongle
    "serial"  - Match by serial number
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth dongle, 0-indexed (e.g., "#0", "#1")`
}
