package esb

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel range supported by the nRF24 radio
const (
	MinChannel = 0
	MaxChannel = 125

	// DefaultFirstChannel and DefaultLastChannel bound the default scan set
	DefaultFirstChannel = 2
	DefaultLastChannel  = 83
)

// ChannelSet is an ordered list of RF channels. Iteration order is the
// declaration order.
type ChannelSet []int

// DefaultChannels returns channels 2 through 83
func DefaultChannels() ChannelSet {
	channels := make(ChannelSet, 0, DefaultLastChannel-DefaultFirstChannel+1)
	for c := DefaultFirstChannel; c <= DefaultLastChannel; c++ {
		channels = append(channels, c)
	}
	return channels
}

// ParseChannels parses a list such as "2,5,10-20" or "2 5 7"
func ParseChannels(s string) (ChannelSet, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var channels ChannelSet
	for _, field := range fields {
		lo, hi, isRange := strings.Cut(field, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, configError("channels", s, fmt.Errorf("bad channel %q", field))
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(hi)
			if err != nil || end < start {
				return nil, configError("channels", s, fmt.Errorf("bad channel range %q", field))
			}
		}
		// Bounds are checked per field so a huge range is never expanded
		if err := checkChannel(start); err != nil {
			return nil, configError("channels", s, err)
		}
		if err := checkChannel(end); err != nil {
			return nil, configError("channels", s, err)
		}
		for c := start; c <= end; c++ {
			channels = append(channels, c)
		}
	}

	if err := channels.Validate(); err != nil {
		return nil, configError("channels", s, err)
	}
	return channels, nil
}

// Validate checks that the set is non-empty and every channel is in range
func (c ChannelSet) Validate() error {
	if len(c) == 0 {
		return ErrNoChannels
	}
	for _, channel := range c {
		if err := checkChannel(channel); err != nil {
			return err
		}
	}
	return nil
}

func checkChannel(channel int) error {
	if channel < MinChannel || channel > MaxChannel {
		return fmt.Errorf("%w: %d", ErrChannelOutOfRange, channel)
	}
	return nil
}

func (c ChannelSet) String() string {
	parts := make([]string, len(c))
	for i, channel := range c {
		parts[i] = strconv.Itoa(channel)
	}
	return strings.Join(parts, ", ")
}
