package esb

import "time"

// Hardware limits for auto-acknowledge timing
const (
	AckTimeoutStepMicros = 250
	MinAckTimeoutMicros  = 250
	MaxAckTimeoutMicros  = 4000
	MaxAckTimeoutStep    = 15
	MaxRetries           = 15
)

// Tool defaults
const (
	DefaultAckTimeoutMicros = 250
	DefaultRetries          = 1
	DefaultTimeout          = 100 * time.Millisecond
	DefaultDwellTime        = 100 * time.Millisecond
	DefaultPingPayload      = "0F:0F:0F:0F"
)

// AckTimeout is the quantized auto-acknowledge wait: step n waits (n+1)*250µs
type AckTimeout uint8

// AckTimeoutFromMicros rounds to the nearest 250µs step and clamps to [250,4000]µs
func AckTimeoutFromMicros(us int) AckTimeout {
	step := (us+AckTimeoutStepMicros/2)/AckTimeoutStepMicros - 1
	if step < 0 {
		step = 0
	}
	if step > MaxAckTimeoutStep {
		step = MaxAckTimeoutStep
	}
	return AckTimeout(step)
}

// Micros returns the wait in microseconds
func (t AckTimeout) Micros() int {
	return (int(t) + 1) * AckTimeoutStepMicros
}

// Duration returns the wait as a time.Duration
func (t AckTimeout) Duration() time.Duration {
	return time.Duration(t.Micros()) * time.Microsecond
}

// Retries is the hardware auto-retransmit count
type Retries uint8

// ClampRetries limits n to [0,15]
func ClampRetries(n int) Retries {
	if n < 0 {
		return 0
	}
	if n > MaxRetries {
		return MaxRetries
	}
	return Retries(n)
}
