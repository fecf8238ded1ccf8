// go-ov13b10 is a register-level driver for the OmniVision OV13B10 13MP
// image sensor on its two-wire control bus.
package ov13b10

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"periph.io/x/periph/conn/physic"
)

const (
	// Address is the default address of the sensor on the I2C bus
	Address uint8 = 0x36

	// ChipID is the value of the chip identification register
	ChipID uint32 = 0x560d42

	// XvclkFreq is the nominal external input clock frequency. All mode
	// timing assumes this rate.
	XvclkFreq = 24 * physic.MegaHertz

	// LinkFreq is the CSI-2 link frequency in the supported modes
	LinkFreq = 560 * physic.MegaHertz

	// PixelRate is the pixel throughput over the 4-lane 10-bit link in
	// pixels per second
	PixelRate uint64 = 560000000 * 2 * 4 / 10
)

// SensorName is the part name reported in the module identification
// record.
const SensorName = "ov13b10"

// ModuleInfo identifies the camera module assembly the sensor sits in.
type ModuleInfo struct {
	// Sensor is the sensor part name, SensorName unless overridden
	Sensor string
	// Module is the camera module vendor/part name
	Module string
	// Lens is the lens part name
	Lens string
	// Facing is the module orientation, "back" or "front"
	Facing string
	// Index distinguishes multiple modules on one board
	Index uint32
}

// OV13B10 represents a single OV13B10 sensor instance. All state is
// guarded by one instance lock; an instance owns its register bus.
type OV13B10 struct {
	// bus is the register transport
	bus Bus
	res Resources

	info ModuleInfo

	mu sync.Mutex

	curMode   *Mode
	ctrls     controlState
	powerOn   bool
	streaming bool

	// active mirrors powerOn for the built-in gate, which runs without
	// the instance lock
	active atomic.Bool

	gate PowerGate

	// log logger for debugging
	log *log.Logger
}

// New returns a new OV13B10 sensor instance on the given bus and board
// resources. It powers the sensor up and verifies its identity; on an
// identity mismatch the sensor is powered back down and the error
// returned.
func New(bus Bus, res Resources, info ModuleInfo) (*OV13B10, error) {

	d, err := new(bus, res, info)

	if err != nil {
		return nil, err
	}

	// create null logger
	d.log = log.New(io.Discard, "", log.LstdFlags)

	// finish device setup
	err = d.setup()

	return d, err
}

// NewWithLog creates a sensor instance with a logger to be used for
// debugging.
func NewWithLog(bus Bus, res Resources, info ModuleInfo,
	log *log.Logger) (*OV13B10, error) {

	d, err := new(bus, res, info)

	if err != nil {
		return nil, err
	}

	// set logger
	d.log = log

	// finish device setup
	err = d.setup()

	return d, err
}

// new returns a new OV13B10 sensor instance
func new(bus Bus, res Resources, info ModuleInfo) (*OV13B10, error) {

	if bus == nil {
		return nil, fmt.Errorf("register bus is not initiated")
	}

	if res.Clock == nil {
		return nil, fmt.Errorf("xvclk clock resource is required")
	}

	if res.Supplies == nil {
		return nil, fmt.Errorf("supply rail resource is required")
	}

	if info.Sensor == "" {
		info.Sensor = SensorName
	}

	d := &OV13B10{
		bus:     bus,
		res:     res,
		info:    info,
		curMode: &supportedModes[0],
	}

	d.ctrls.resetToMode(d.curMode)
	d.ctrls.gain = GainDefault

	d.gate = res.Gate

	if d.gate == nil {
		d.gate = &powerGate{d: d}
	}

	return d, nil
}

// setup completes New instance creation and is a common function for
// New() and NewWithLog()
func (d *OV13B10) setup() error {

	d.log.Print("Starting Setup()")

	if err := d.PowerOn(); err != nil {
		return fmt.Errorf("Failed to power on device: %w", err)
	}

	if err := d.VerifyIdentity(); err != nil {
		if perr := d.PowerOff(); perr != nil {
			d.log.Printf("power off after failed identification: %v", perr)
		}

		return err
	}

	d.log.Print("Device powered and identified")

	return nil
}

// VerifyIdentity reads the chip identification register and compares it
// against ChipID. It is a pure query; a mismatch means the device is
// absent or a different part. The sensor must be powered.
func (d *OV13B10) VerifyIdentity() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.powerOn {
		return fmt.Errorf("%w: verify identity", ErrNotReady)
	}

	id, err := d.readReg(REG_CHIP_ID, regValue24Bit)

	if err != nil {
		return fmt.Errorf("read sensor id: %w", err)
	}

	if id != ChipID {
		return &IdentityMismatchError{Got: id}
	}

	d.log.Printf("Detected OV%06x sensor", id)

	return nil
}

// Info returns the module identification record.
func (d *OV13B10) Info() ModuleInfo {
	return d.info
}
