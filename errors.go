package ov13b10

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a register byte length or a
	// control value is outside its valid range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBus is returned when a transfer on the register bus fails or
	// moves fewer bytes than requested.
	ErrBus = errors.New("bus transfer failed")

	// ErrClock is returned when the external clock cannot be programmed
	// or enabled during power-up.
	ErrClock = errors.New("xvclk setup failed")

	// ErrPower is returned when the sensor supply rails cannot be
	// enabled during power-up.
	ErrPower = errors.New("supply rail setup failed")

	// ErrNotReady is returned when an operation that needs the sensor
	// powered is attempted while it is off.
	ErrNotReady = errors.New("sensor is not powered")

	// ErrStreaming is returned when an operation rejected during
	// streaming, such as a format change, is attempted while the sensor
	// streams.
	ErrStreaming = errors.New("sensor is streaming")
)

// IdentityMismatchError is returned by VerifyIdentity when the chip
// identification register does not hold the expected OV13B10 id. The
// device is absent or a different part.
type IdentityMismatchError struct {
	// Got is the value actually read from the identification register.
	Got uint32
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("unexpected sensor id 0x%06x, want 0x%06x", e.Got, ChipID)
}
