package ov13b10

import "fmt"

// Control limits and register field encodings.
const (
	// ExposureMin is the smallest accepted exposure in lines
	ExposureMin uint32 = 4
	// exposureMargin is the number of lines the exposure must stay below
	// the vertical total
	exposureMargin uint32 = 16

	// GainMin and GainMax bound the analogue gain code, independent of
	// the active mode
	GainMin uint32 = 0x80
	GainMax uint32 = 0x07c0
	// GainDefault is the analogue gain applied until a gain is set
	GainDefault uint32 = 0x80

	gainHMask  uint32 = 0x07
	gainHShift uint32 = 8
	gainLMask  uint32 = 0xff

	// vtsMax caps the vertical total the sensor can be programmed with
	vtsMax uint32 = 0x7fff

	testPatternEnable  uint32 = 0x80
	testPatternDisable uint32 = 0x00
)

// testPatternMenu names the supported test pattern selections. Index 0
// disables the pattern generator.
var testPatternMenu = []string{
	"Disabled",
	"Vertical Color Bar Type 1",
	"Vertical Color Bar Type 2",
	"Vertical Color Bar Type 3",
	"Vertical Color Bar Type 4",
}

// TestPatterns returns the test pattern menu, indexed by the value passed
// to SetTestPattern.
func TestPatterns() []string {

	out := make([]string, len(testPatternMenu))
	copy(out, testPatternMenu)

	return out
}

// controlState holds the logical control values and the ranges currently
// valid for them. The exposure range depends on the vertical blanking,
// which in turn is bounded by the active mode, so changing either end of
// that chain re-derives the rest. Guarded by the device lock.
type controlState struct {
	exposure    uint32
	exposureMax uint32

	gain uint32

	vblank    uint32
	vblankMin uint32
	vblankMax uint32

	testPattern uint32

	// hblank is fixed by the active mode and read only; the catalog's
	// horizontal totals make it negative
	hblank int64
}

// resetToMode re-derives every mode-dependent range and default from a
// newly selected mode. The gain is mode-independent and kept.
func (c *controlState) resetToMode(m *Mode) {

	c.hblank = int64(m.HTSDef) - int64(m.Width)

	c.vblank = m.VTSDef - m.Height
	c.vblankMin = m.VTSDef - m.Height
	c.vblankMax = vtsMax - m.Height

	c.exposureMax = m.VTSDef - exposureMargin
	c.exposure = m.ExpDef

	if c.exposure > c.exposureMax {
		c.exposure = c.exposureMax
	}
}

// SetExposure sets the exposure in lines. The accepted range is
// [ExposureMin, height+vblank-16] for the active mode and current
// vertical blanking. The value is retained while the sensor is powered
// down and applied on the next stream start.
func (d *OV13B10) SetExposure(lines uint32) error {

	d.mu.Lock()

	if lines < ExposureMin || lines > d.ctrls.exposureMax {
		max := d.ctrls.exposureMax
		d.mu.Unlock()
		return fmt.Errorf("%w: exposure %d outside [%d, %d]",
			ErrInvalidArgument, lines, ExposureMin, max)
	}

	d.ctrls.exposure = lines
	d.mu.Unlock()

	return d.writeControl(func() error {
		return d.writeReg(REG_EXPOSURE, regValue24Bit, d.ctrls.exposure)
	})
}

// Exposure returns the current exposure in lines.
func (d *OV13B10) Exposure() uint32 {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.exposure
}

// ExposureRange returns the currently valid exposure range in lines.
func (d *OV13B10) ExposureRange() (min, max uint32) {

	d.mu.Lock()
	defer d.mu.Unlock()

	return ExposureMin, d.ctrls.exposureMax
}

// SetAnalogGain sets the analogue gain code, accepted in
// [GainMin, GainMax]. The code is split over the high and low gain
// registers on the device.
func (d *OV13B10) SetAnalogGain(code uint32) error {

	d.mu.Lock()

	if code < GainMin || code > GainMax {
		d.mu.Unlock()
		return fmt.Errorf("%w: gain 0x%x outside [0x%x, 0x%x]",
			ErrInvalidArgument, code, GainMin, GainMax)
	}

	d.ctrls.gain = code
	d.mu.Unlock()

	return d.writeControl(func() error {
		return d.writeGain(d.ctrls.gain)
	})
}

// AnalogGain returns the current analogue gain code.
func (d *OV13B10) AnalogGain() uint32 {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.gain
}

// SetVBlank sets the vertical blanking in lines, accepted between the
// active mode's default and 0x7fff-height. Blanking bounds the exposure,
// so the exposure maximum is re-derived to height+vblank-16 and the held
// exposure clamped before the new vertical total is written.
func (d *OV13B10) SetVBlank(lines uint32) error {

	d.mu.Lock()

	if lines < d.ctrls.vblankMin || lines > d.ctrls.vblankMax {
		min, max := d.ctrls.vblankMin, d.ctrls.vblankMax
		d.mu.Unlock()
		return fmt.Errorf("%w: vblank %d outside [%d, %d]",
			ErrInvalidArgument, lines, min, max)
	}

	d.ctrls.vblank = lines
	d.ctrls.exposureMax = d.curMode.Height + lines - exposureMargin

	if d.ctrls.exposure > d.ctrls.exposureMax {
		d.ctrls.exposure = d.ctrls.exposureMax
	}

	d.mu.Unlock()

	return d.writeControl(func() error {
		return d.writeReg(REG_VTS, regValue16Bit, d.ctrls.vblank+d.curMode.Height)
	})
}

// VBlank returns the current vertical blanking in lines.
func (d *OV13B10) VBlank() uint32 {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.vblank
}

// VBlankRange returns the currently valid vertical blanking range.
func (d *OV13B10) VBlankRange() (min, max uint32) {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.vblankMin, d.ctrls.vblankMax
}

// HBlank returns the horizontal blanking in pixels. It is fixed by the
// active mode.
func (d *OV13B10) HBlank() int64 {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.hblank
}

// SetTestPattern selects a test pattern by menu index. Index 0 disables
// the pattern generator.
func (d *OV13B10) SetTestPattern(index uint32) error {

	d.mu.Lock()

	if index >= uint32(len(testPatternMenu)) {
		d.mu.Unlock()
		return fmt.Errorf("%w: test pattern index %d outside [0, %d]",
			ErrInvalidArgument, index, len(testPatternMenu)-1)
	}

	d.ctrls.testPattern = index
	d.mu.Unlock()

	return d.writeControl(func() error {
		return d.writeTestPattern(d.ctrls.testPattern)
	})
}

// TestPattern returns the current test pattern index.
func (d *OV13B10) TestPattern() uint32 {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ctrls.testPattern
}

// writeControl issues a control register write if the sensor is powered
// and actively referenced. When it is not, the logical value stays
// recorded and takes effect on the next stream start, so skipping the
// write still succeeds. The gate may block inside the host
// power-management layer and is never called with the device lock held;
// the lock is re-acquired for the write itself so control traffic never
// interleaves with a register program, and write reads the held state
// under it.
func (d *OV13B10) writeControl(write func() error) error {

	if !d.gate.AcquireIfActive() {
		return nil
	}

	defer d.gate.Release()

	d.mu.Lock()
	defer d.mu.Unlock()

	return write()
}

// writeGain splits a gain code over the high and low gain registers.
func (d *OV13B10) writeGain(code uint32) error {

	if err := d.writeReg(REG_GAIN_H, regValue8Bit, (code>>gainHShift)&gainHMask); err != nil {
		return err
	}

	return d.writeReg(REG_GAIN_L, regValue8Bit, code&gainLMask)
}

// writeTestPattern encodes a menu index into the test pattern register.
func (d *OV13B10) writeTestPattern(index uint32) error {

	val := testPatternDisable

	if index > 0 {
		val = (index - 1) | testPatternEnable
	}

	return d.writeReg(REG_TEST_PATTERN, regValue8Bit, val)
}

// setupControls re-applies every held control value to the device. Called
// with the device lock held on the transition to streaming, so values set
// while stopped or powered down take effect immediately.
func (d *OV13B10) setupControls() error {

	if err := d.writeReg(REG_EXPOSURE, regValue24Bit, d.ctrls.exposure); err != nil {
		return err
	}

	if err := d.writeGain(d.ctrls.gain); err != nil {
		return err
	}

	if err := d.writeReg(REG_VTS, regValue16Bit, d.ctrls.vblank+d.curMode.Height); err != nil {
		return err
	}

	return d.writeTestPattern(d.ctrls.testPattern)
}
