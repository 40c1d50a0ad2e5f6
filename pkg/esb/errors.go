package esb

import (
	"errors"
	"fmt"
)

// Configuration errors
var (
	// ErrAddressTooShort indicates an address below the minimum addressable prefix
	ErrAddressTooShort = errors.New("address must be at least 2 bytes")

	// ErrAddressTooLong indicates an address wider than the radio's address registers
	ErrAddressTooLong = errors.New("address must be at most 5 bytes")

	// ErrPrefixTooLong indicates a promiscuous prefix longer than the address width
	ErrPrefixTooLong = errors.New("prefix must be at most 5 bytes")

	// ErrInvalidHex indicates input that is not colon-separated hex
	ErrInvalidHex = errors.New("invalid hex string")

	// ErrNoChannels indicates an empty channel set
	ErrNoChannels = errors.New("no channels specified")

	// ErrChannelOutOfRange indicates a channel outside the radio's range
	ErrChannelOutOfRange = errors.New("channel out of range (valid range: 0-125)")

	// ErrInvalidPasses indicates a non-positive pass count
	ErrInvalidPasses = errors.New("passes must be at least 1")

	// ErrEmptyPayload indicates an empty ping payload
	ErrEmptyPayload = errors.New("ping payload must not be empty")

	// ErrInvalidTimeout indicates a negative duration
	ErrInvalidTimeout = errors.New("timeout must not be negative")
)

// ConfigError reports malformed tool configuration. It is always raised
// before any radio activity begins.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is, or wraps, a *ConfigError
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

func configError(field, value string, err error) error {
	return &ConfigError{Field: field, Value: value, Err: err}
}
