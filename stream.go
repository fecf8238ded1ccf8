package ov13b10

import "fmt"

// StartStreaming moves the sensor from standby into active streaming: it
// applies the active mode's register program, re-applies every held
// control value, then sets the mode control register to streaming. Any
// failure aborts with the sensor left in standby. The caller must have
// powered the sensor on first; streaming start does not re-verify power.
// Starting while already streaming is a no-op.
func (d *OV13B10) StartStreaming() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.streaming {
		return nil
	}

	d.log.Print("Start streaming")

	if err := d.writeProgram(d.curMode.regs); err != nil {
		return fmt.Errorf("apply mode registers: %w", err)
	}

	if err := d.setupControls(); err != nil {
		return fmt.Errorf("apply control values: %w", err)
	}

	if err := d.writeReg(REG_CTRL_MODE, regValue8Bit, uint32(MODE_STREAMING)); err != nil {
		return err
	}

	d.streaming = true

	return nil
}

// StopStreaming writes the standby value to the mode control register.
// Halting is a best-effort safety action: a failing write is logged and
// the sensor is considered stopped regardless. Stopping while already
// stopped is a no-op.
func (d *OV13B10) StopStreaming() {

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.streaming {
		return
	}

	d.log.Print("Stop streaming")

	if err := d.writeReg(REG_CTRL_MODE, regValue8Bit, uint32(MODE_SW_STANDBY)); err != nil {
		d.log.Printf("stop streaming failed: %v", err)
	}

	d.streaming = false
}

// Streaming reports whether the sensor is streaming.
func (d *OV13B10) Streaming() bool {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.streaming
}

// QuickStream toggles the mode control register directly, without
// re-applying the mode program or control values and without changing the
// tracked stream state. It resumes or pauses a stream that was already
// set up.
func (d *OV13B10) QuickStream(on bool) error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.powerOn {
		return fmt.Errorf("%w: quick stream", ErrNotReady)
	}

	val := uint32(MODE_SW_STANDBY)

	if on {
		val = uint32(MODE_STREAMING)
	}

	return d.writeReg(REG_CTRL_MODE, regValue8Bit, val)
}
