package ov13b10

// Driver is the operation set an OV13B10-family sensor exposes. Device
// families pick an implementation at construction time, and it can be
// mocked.
type Driver interface {
	TryFormat(width, height uint32) Mode          // TryFormat returns the mode SetFormat would pick, without committing it.
	SetFormat(width, height uint32) (Mode, error) // SetFormat commits the best-fit mode and re-derives control ranges.
	Format() Mode                                 // Format returns the active mode.
	FrameInterval() Fract                         // FrameInterval returns the active mode's frame interval.
	PowerOn() error                               // PowerOn runs the power-up sequence and writes the global init program.
	PowerOff() error                              // PowerOff reverses the power-up sequence.
	StartStreaming() error                        // StartStreaming applies the mode program, the held controls and the streaming bit.
	StopStreaming()                               // StopStreaming writes standby best-effort; the state always becomes stopped.
	SetExposure(lines uint32) error               // SetExposure sets the exposure in lines within the derived range.
	SetAnalogGain(code uint32) error              // SetAnalogGain sets the analogue gain code.
	SetVBlank(lines uint32) error                 // SetVBlank sets vertical blanking and re-derives the exposure range.
	SetTestPattern(index uint32) error            // SetTestPattern selects a test pattern menu entry.
	VerifyIdentity() error                        // VerifyIdentity checks the chip identification register.
	Info() ModuleInfo                             // Info returns the module identification record.
}

var _ Driver = (*OV13B10)(nil)
