package ov13b10

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

// Pin configuration states selectable through PinMux.
const (
	PinStateDefault = "default"
	PinStateSleep   = "sleep"
)

// bootCycles is the number of sensor clock cycles the internal boot
// sequence needs after the powerdown line is released.
const bootCycles = 8192

// Clock drives the sensor's external input clock (xvclk).
type Clock interface {
	SetRate(f physic.Frequency) error
	Rate() physic.Frequency
	Enable() error
	Disable() error
}

// Supplies switches the sensor's power rails (avdd, dovdd, dvdd) as one
// bulk group.
type Supplies interface {
	Enable() error
	Disable() error
}

// PinMux selects a named pin configuration state. Boards without a pin
// controller leave it nil.
type PinMux interface {
	Select(state string) error
}

// PowerGate is the availability check consulted before a control register
// write. AcquireIfActive reports whether the sensor is powered and in
// active use, taking a reference that must be returned with Release. The
// host power-management layer may supply its own implementation; it may
// block, so the driver never calls it with the device lock held.
type PowerGate interface {
	AcquireIfActive() bool
	Release()
}

// powerGate is the built-in PowerGate tracking the device's own power
// state.
type powerGate struct {
	d *OV13B10
}

func (g *powerGate) AcquireIfActive() bool {
	return g.d.active.Load()
}

func (g *powerGate) Release() {}

// Resources are the board-level collaborators the power sequencer drives.
// Clock and Supplies are required; the pins and the pin controller are
// optional and skipped when nil.
type Resources struct {
	// Power is the primary power-enable line
	Power gpio.PinIO
	// Reset is the sensor reset line
	Reset gpio.PinIO
	// Pwdn is the powerdown/enable line
	Pwdn gpio.PinIO

	Clock    Clock
	Supplies Supplies
	Pins     PinMux

	// Gate overrides the built-in availability check for control writes
	Gate PowerGate
}

// PowerOn raises the sensor power rails, clock and control lines in
// order, then writes the device-global initialization program. Requesting
// On while already On is a no-op.
func (d *OV13B10) PowerOn() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.powerOn {
		return nil
	}

	if err := d.powerUp(); err != nil {
		return err
	}

	if err := d.writeProgram(globalRegs); err != nil {
		d.powerDown()
		return fmt.Errorf("could not set init registers: %w", err)
	}

	d.powerOn = true
	d.active.Store(true)

	return nil
}

// PowerOff reverses the power-up sequence. Requesting Off while already
// Off is a no-op.
func (d *OV13B10) PowerOff() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.powerOn {
		return nil
	}

	d.active.Store(false)
	d.powerDown()
	d.powerOn = false

	return nil
}

// powerUp runs the power-on sequence. The clock and supply steps are
// required and abort the sequence; pin steps are best effort. A supply
// failure rolls back the already-enabled clock.
func (d *OV13B10) powerUp() error {

	if d.res.Power != nil {
		if err := d.res.Power.Out(gpio.High); err != nil {
			d.log.Printf("Failed to raise power gpio: %v", err)
		}
	}

	time.Sleep(1 * time.Millisecond)

	if d.res.Pins != nil {
		if err := d.res.Pins.Select(PinStateDefault); err != nil {
			d.log.Printf("could not set default pin state: %v", err)
		}
	}

	if err := d.res.Clock.SetRate(XvclkFreq); err != nil {
		return fmt.Errorf("%w: set rate: %v", ErrClock, err)
	}

	if d.res.Clock.Rate() != XvclkFreq {
		d.log.Printf("xvclk mismatched, modes are based on 24MHz")
	}

	if err := d.res.Clock.Enable(); err != nil {
		return fmt.Errorf("%w: enable: %v", ErrClock, err)
	}

	if d.res.Reset != nil {
		if err := d.res.Reset.Out(gpio.Low); err != nil {
			d.log.Printf("Failed to assert reset gpio: %v", err)
		}
	}

	if err := d.res.Supplies.Enable(); err != nil {
		if cerr := d.res.Clock.Disable(); cerr != nil {
			d.log.Printf("Failed to disable xvclk: %v", cerr)
		}

		return fmt.Errorf("%w: enable regulators: %v", ErrPower, err)
	}

	if d.res.Reset != nil {
		if err := d.res.Reset.Out(gpio.High); err != nil {
			d.log.Printf("Failed to release reset gpio: %v", err)
		}
	}

	time.Sleep(500 * time.Microsecond)

	if d.res.Pwdn != nil {
		if err := d.res.Pwdn.Out(gpio.High); err != nil {
			d.log.Printf("Failed to raise pwdn gpio: %v", err)
		}
	}

	// Hold off register access until the internal boot sequence is done.
	time.Sleep(bootDelay(bootCycles))

	return nil
}

// powerDown reverses powerUp. Every step is best effort.
func (d *OV13B10) powerDown() {

	if d.res.Pwdn != nil {
		if err := d.res.Pwdn.Out(gpio.Low); err != nil {
			d.log.Printf("Failed to lower pwdn gpio: %v", err)
		}
	}

	if err := d.res.Clock.Disable(); err != nil {
		d.log.Printf("Failed to disable xvclk: %v", err)
	}

	if d.res.Reset != nil {
		if err := d.res.Reset.Out(gpio.Low); err != nil {
			d.log.Printf("Failed to assert reset gpio: %v", err)
		}
	}

	if d.res.Pins != nil {
		if err := d.res.Pins.Select(PinStateSleep); err != nil {
			d.log.Printf("could not set sleep pin state: %v", err)
		}
	}

	if d.res.Power != nil {
		if err := d.res.Power.Out(gpio.Low); err != nil {
			d.log.Printf("Failed to lower power gpio: %v", err)
		}
	}

	if err := d.res.Supplies.Disable(); err != nil {
		d.log.Printf("Failed to disable regulators: %v", err)
	}
}

// bootDelay converts a cycle count at the nominal xvclk frequency into a
// wait duration, rounding up to a whole microsecond.
func bootDelay(cycles uint32) time.Duration {

	mhz := uint32(XvclkFreq / physic.MegaHertz)

	return time.Duration((cycles+mhz-1)/mhz) * time.Microsecond
}
