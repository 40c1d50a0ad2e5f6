package report

import (
	"bytes"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/herlein/nrf24tools/pkg/esb"
)

// DeviceInfo summarises the traffic heard from one address
type DeviceInfo struct {
	Address     []byte // display order
	Channels    []int  // in the order first heard on
	FirstSeen   time.Time
	LastSeen    time.Time
	PacketCount int
	MaxPayload  int
}

// Tracker is a Sink that keeps per-address statistics for a capture
type Tracker struct {
	mu      sync.RWMutex
	devices map[string]*DeviceInfo

	onNew func(DeviceInfo)
}

// NewTracker creates a Tracker. onNew, if set, is called the first time
// an address is heard.
func NewTracker(onNew func(DeviceInfo)) *Tracker {
	return &Tracker{
		devices: make(map[string]*DeviceInfo),
		onNew:   onNew,
	}
}

func (t *Tracker) WritePacket(packet esb.Packet) error {
	t.mu.Lock()

	key := string(packet.Address)
	info, exists := t.devices[key]
	if !exists {
		info = &DeviceInfo{
			Address:   append([]byte(nil), packet.Address...),
			FirstSeen: packet.Timestamp,
		}
		t.devices[key] = info
	}

	info.LastSeen = packet.Timestamp
	info.PacketCount++
	if packet.PayloadLength() > info.MaxPayload {
		info.MaxPayload = packet.PayloadLength()
	}
	if !slices.Contains(info.Channels, packet.Channel) {
		info.Channels = append(info.Channels, packet.Channel)
	}

	var created DeviceInfo
	if !exists {
		created = info.clone()
	}
	t.mu.Unlock()

	if !exists && t.onNew != nil {
		t.onNew(created)
	}
	return nil
}

func (t *Tracker) Close() error { return nil }

// Devices returns a copy of every tracked device ordered by address
func (t *Tracker) Devices() []DeviceInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	devices := make([]DeviceInfo, 0, len(t.devices))
	for _, info := range t.devices {
		devices = append(devices, info.clone())
	}
	slices.SortFunc(devices, func(a, b DeviceInfo) int {
		return bytes.Compare(a.Address, b.Address)
	})
	return devices
}

// Count returns the number of distinct addresses heard
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.devices)
}

func (d *DeviceInfo) clone() DeviceInfo {
	c := *d
	c.Address = append([]byte(nil), d.Address...)
	c.Channels = append([]int(nil), d.Channels...)
	return c
}
