package esb

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// Address widths
const (
	// AddressWidth is the full ESB address width in bytes
	AddressWidth = 5

	// MinAddressWidth is the shortest address the radio can lock onto
	MinAddressWidth = 2
)

// Address is an ESB device address in register order: least significant
// byte first, the way the radio's address registers take it.
type Address []byte

// ParseAddress parses a display-order address such as "E7:E7:E7:E7:E7".
// The bytes are reversed into register order and truncated to AddressWidth.
func ParseAddress(s string) (Address, error) {
	raw, err := ParseHex(s)
	if err != nil {
		return nil, configError("address", s, err)
	}

	address := make(Address, len(raw))
	for i, b := range raw {
		address[len(raw)-1-i] = b
	}
	if len(address) > AddressWidth {
		address = address[:AddressWidth]
	}

	if err := address.Validate(); err != nil {
		return nil, configError("address", s, err)
	}
	return address, nil
}

// ParsePrefix parses a promiscuous mode address prefix (0-5 bytes).
// Prefix bytes are kept in the order given.
func ParsePrefix(s string) ([]byte, error) {
	prefix, err := ParseHex(s)
	if err != nil {
		return nil, configError("prefix", s, err)
	}
	if len(prefix) > AddressWidth {
		return nil, configError("prefix", s, ErrPrefixTooLong)
	}
	return prefix, nil
}

// ParsePayload parses a hex payload such as "0F:0F:0F:0F"
func ParsePayload(s string) ([]byte, error) {
	payload, err := ParseHex(s)
	if err != nil {
		return nil, configError("payload", s, err)
	}
	if len(payload) == 0 {
		return nil, configError("payload", s, ErrEmptyPayload)
	}
	return payload, nil
}

// ParseHex decodes hex with optional colon separators. An empty string
// decodes to an empty slice.
func ParseHex(s string) ([]byte, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return data, nil
}

// Validate checks the address width
func (a Address) Validate() error {
	if len(a) < MinAddressWidth {
		return ErrAddressTooShort
	}
	if len(a) > AddressWidth {
		return ErrAddressTooLong
	}
	return nil
}

// WithByte returns a copy of the address with byte pos replaced by b
func (a Address) WithByte(pos int, b byte) Address {
	probe := make(Address, len(a))
	copy(probe, a)
	probe[pos] = b
	return probe
}

// Equal reports whether both addresses have identical bytes
func (a Address) Equal(other Address) bool {
	return bytes.Equal(a, other)
}

// Compare orders addresses by their display form
func (a Address) Compare(other Address) int {
	return bytes.Compare(a.Display(), other.Display())
}

// String returns the display form: most significant byte first
func (a Address) String() string {
	return FormatHex(a.Display())
}

// Display returns a copy of the bytes in display order
func (a Address) Display() []byte {
	out := make([]byte, len(a))
	for i, b := range a {
		out[len(a)-1-i] = b
	}
	return out
}

// FormatHex renders bytes as colon-separated upper-case hex
func FormatHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
