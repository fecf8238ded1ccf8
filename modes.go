package ov13b10

import "fmt"

// Fract is a frame interval expressed as numerator/denominator seconds.
type Fract struct {
	Numerator   uint32
	Denominator uint32
}

// Mode pairs an output resolution and frame timing with the register
// program realizing it on the sensor.
type Mode struct {
	Width  uint32
	Height uint32
	// MaxFPS is the frame interval at the mode's default vertical total
	MaxFPS Fract
	// HTSDef is the default horizontal total in pixels including blanking
	HTSDef uint32
	// VTSDef is the default vertical total in lines including blanking
	VTSDef uint32
	// ExpDef is the default exposure in lines
	ExpDef uint32

	regs []regVal
}

// globalRegs is the device-wide initialization program written once per
// power-up, before any mode program.
var globalRegs = []regVal{
	{0x0103, 0x01},
	{0x0303, 0x04},
	{0x0305, 0xaf},
	{0x0321, 0x00},
	{0x0323, 0x04},
	{0x0324, 0x01},
	{0x0325, 0xa4},
	{0x0326, 0x81},
	{0x0327, 0x04},
	{0x3012, 0x07},
	{0x3013, 0x32},
	{0x3107, 0x23},
	{0x3501, 0x0c},
	{0x3502, 0x10},
	{0x3504, 0x08},
	{0x3508, 0x07},
	{0x3509, 0xc0},
	{0x3600, 0x16},
	{0x3601, 0x54},
	{0x3612, 0x4e},
	{0x3620, 0x00},
	{0x3621, 0x68},
	{0x3622, 0x66},
	{0x3623, 0x03},
	{0x3662, 0x92},
	{0x3666, 0xbb},
	{0x3667, 0x44},
	{0x366e, 0xff},
	{0x366f, 0xf3},
	{0x3675, 0x44},
	{0x3676, 0x00},
	{0x367f, 0xe9},
	{0x3681, 0x32},
	{0x3682, 0x1f},
	{0x3683, 0x0b},
	{0x3684, 0x0b},
	{0x3704, 0x0f},
	{0x3706, 0x40},
	{0x3708, 0x3b},
	{0x3709, 0x72},
	{0x370b, 0xa2},
	{0x3714, 0x24},
	{0x371a, 0x3e},
	{0x3725, 0x42},
	{0x3739, 0x12},
	{0x3767, 0x00},
	{0x377a, 0x0d},
	{0x3789, 0x18},
	{0x3790, 0x40},
	{0x3791, 0xa2},
	{0x37c2, 0x04},
	{0x37c3, 0xf1},
	{0x37d9, 0x0c},
	{0x37da, 0x02},
	{0x37dc, 0x02},
	{0x37e1, 0x04},
	{0x37e2, 0x0a},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x10},
	{0x3809, 0x70},
	{0x380a, 0x0c},
	{0x380b, 0x30},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x0c},
	{0x380f, 0x7c},
	{0x3811, 0x0f},
	{0x3813, 0x09},
	{0x3814, 0x01},
	{0x3815, 0x01},
	{0x3816, 0x01},
	{0x3817, 0x01},
	{0x381f, 0x08},
	{0x3820, 0x88},
	{0x3821, 0x00},
	{0x3822, 0x14},
	{0x382e, 0xe6},
	{0x3c80, 0x00},
	{0x3c87, 0x01},
	{0x3c8c, 0x19},
	{0x3c8d, 0x1c},
	{0x3ca0, 0x00},
	{0x3ca1, 0x00},
	{0x3ca2, 0x00},
	{0x3ca3, 0x00},
	{0x3ca4, 0x50},
	{0x3ca5, 0x11},
	{0x3ca6, 0x01},
	{0x3ca7, 0x00},
	{0x3ca8, 0x00},
	{0x4008, 0x02},
	{0x4009, 0x0f},
	{0x400a, 0x01},
	{0x400b, 0x19},
	{0x4011, 0x21},
	{0x4017, 0x08},
	{0x4019, 0x04},
	{0x401a, 0x58},
	{0x4032, 0x1e},
	{0x4050, 0x02},
	{0x4051, 0x09},
	{0x405e, 0x00},
	{0x4066, 0x02},
	{0x4501, 0x00},
	{0x4502, 0x10},
	{0x4505, 0x00},
	{0x4800, 0x64},
	{0x481b, 0x3e},
	{0x481f, 0x30},
	{0x4825, 0x34},
	{0x4837, 0x0e},
	{0x484b, 0x01},
	{0x4883, 0x02},
	{0x5000, 0xff},
	{0x5001, 0x0f},
	{0x5045, 0x20},
	{0x5046, 0x20},
	{0x5047, 0xa4},
	{0x5048, 0x20},
	{0x5049, 0xa4},
	{0x0100, 0x01},
	{REG_NULL, 0x00},
}

var mode4208x3120Regs = []regVal{
	{0x0305, 0xaf},
	{0x3501, 0x0c},
	{0x3662, 0x92},
	{0x3714, 0x24},
	{0x3739, 0x12},
	{0x37c2, 0x04},
	{0x37d9, 0x0c},
	{0x37e2, 0x0a},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x10},
	{0x3809, 0x70},
	{0x380a, 0x0c},
	{0x380b, 0x30},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x0c},
	{0x380f, 0x7c},
	{0x3810, 0x00},
	{0x3811, 0x0f},
	{0x3812, 0x00},
	{0x3813, 0x09},
	{0x3814, 0x01},
	{0x3816, 0x01},
	{0x3820, 0x88},
	{0x3c8c, 0x19},
	{0x4008, 0x02},
	{0x4009, 0x0f},
	{0x4050, 0x02},
	{0x4051, 0x09},
	{0x4501, 0x00},
	{0x4505, 0x00},
	{0x4837, 0x0e},
	{0x5000, 0xff},
	{0x5001, 0x0f},
	{REG_NULL, 0x00},
}

var mode4160x3120Regs = []regVal{
	{0x0305, 0xaf},
	{0x3501, 0x0c},
	{0x3662, 0x92},
	{0x3714, 0x24},
	{0x3739, 0x12},
	{0x37c2, 0x04},
	{0x37d9, 0x0c},
	{0x37e2, 0x0a},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x10},
	{0x3809, 0x40},
	{0x380a, 0x0c},
	{0x380b, 0x30},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x0c},
	{0x380f, 0x7c},
	{0x3810, 0x00},
	{0x3811, 0x27},
	{0x3812, 0x00},
	{0x3813, 0x09},
	{0x3814, 0x01},
	{0x3816, 0x01},
	{0x3820, 0x88},
	{0x3c8c, 0x19},
	{0x4008, 0x02},
	{0x4009, 0x0f},
	{0x4050, 0x02},
	{0x4051, 0x09},
	{0x4501, 0x00},
	{0x4505, 0x00},
	{0x4837, 0x0e},
	{0x5000, 0xff},
	{0x5001, 0x0f},
	{REG_NULL, 0x00},
}

var mode4160x2340Regs = []regVal{
	{0x0305, 0xaf},
	{0x3501, 0x0c},
	{0x3662, 0x92},
	{0x3714, 0x24},
	{0x3739, 0x12},
	{0x37c2, 0x04},
	{0x37d9, 0x0c},
	{0x37e2, 0x0a},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x10},
	{0x3809, 0x40},
	{0x380a, 0x09},
	{0x380b, 0x24},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x0c},
	{0x380f, 0x7c},
	{0x3810, 0x00},
	{0x3811, 0x27},
	{0x3812, 0x01},
	{0x3813, 0x8f},
	{0x3814, 0x01},
	{0x3816, 0x01},
	{0x3820, 0x88},
	{0x3c8c, 0x19},
	{0x4008, 0x02},
	{0x4009, 0x0f},
	{0x4050, 0x02},
	{0x4051, 0x09},
	{0x4501, 0x00},
	{0x4505, 0x00},
	{0x4837, 0x0e},
	{0x5000, 0xff},
	{0x5001, 0x0f},
	{REG_NULL, 0x00},
}

var mode2104x1560Regs = []regVal{
	{0x0305, 0xaf},
	{0x3501, 0x06},
	{0x3662, 0x88},
	{0x3714, 0x28},
	{0x3739, 0x10},
	{0x37c2, 0x14},
	{0x37d9, 0x06},
	{0x37e2, 0x0c},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x08},
	{0x3809, 0x38},
	{0x380a, 0x06},
	{0x380b, 0x18},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x06},
	{0x380f, 0x3e},
	{0x3810, 0x00},
	{0x3811, 0x07},
	{0x3812, 0x00},
	{0x3813, 0x05},
	{0x3814, 0x03},
	{0x3816, 0x03},
	{0x3820, 0x8b},
	{0x3c8c, 0x18},
	{0x4008, 0x00},
	{0x4009, 0x05},
	{0x4050, 0x00},
	{0x4051, 0x05},
	{0x4501, 0x08},
	{0x4505, 0x00},
	{0x4837, 0x0e},
	{0x5000, 0xfd},
	{0x5001, 0x0d},
	{REG_NULL, 0x00},
}

var mode2080x1170Regs = []regVal{
	{0x0305, 0xaf},
	{0x3501, 0x06},
	{0x3662, 0x88},
	{0x3714, 0x28},
	{0x3739, 0x10},
	{0x37c2, 0x14},
	{0x37d9, 0x06},
	{0x37e2, 0x0c},
	{0x3800, 0x00},
	{0x3801, 0x00},
	{0x3802, 0x00},
	{0x3803, 0x08},
	{0x3804, 0x10},
	{0x3805, 0x8f},
	{0x3806, 0x0c},
	{0x3807, 0x47},
	{0x3808, 0x08},
	{0x3809, 0x20},
	{0x380a, 0x04},
	{0x380b, 0x92},
	{0x380c, 0x04},
	{0x380d, 0x98},
	{0x380e, 0x06},
	{0x380f, 0x3e},
	{0x3810, 0x00},
	{0x3811, 0x13},
	{0x3812, 0x00},
	{0x3813, 0xc9},
	{0x3814, 0x03},
	{0x3816, 0x03},
	{0x3820, 0x8b},
	{0x3c8c, 0x18},
	{0x4008, 0x00},
	{0x4009, 0x05},
	{0x4050, 0x00},
	{0x4051, 0x05},
	{0x4501, 0x08},
	{0x4505, 0x00},
	{0x4837, 0x0e},
	{0x5000, 0xfd},
	{0x5001, 0x0d},
	{REG_NULL, 0x00},
}

// supportedModes is the fixed mode catalog. Best-fit selection scans it in
// order, so the preferred mode for a tied resolution comes first.
var supportedModes = []Mode{
	{
		Width:  4208,
		Height: 3120,
		MaxFPS: Fract{Numerator: 10000, Denominator: 300000},
		ExpDef: 0x0c00,
		HTSDef: 0x0498,
		VTSDef: 0x0c7c,
		regs:   mode4208x3120Regs,
	},
	{
		Width:  4160,
		Height: 3120,
		MaxFPS: Fract{Numerator: 10000, Denominator: 300000},
		ExpDef: 0x0c00,
		HTSDef: 0x0498,
		VTSDef: 0x0c7c,
		regs:   mode4160x3120Regs,
	},
	{
		Width:  4160,
		Height: 2340,
		MaxFPS: Fract{Numerator: 10000, Denominator: 300000},
		ExpDef: 0x0c00,
		HTSDef: 0x0498,
		VTSDef: 0x0c7c,
		regs:   mode4160x2340Regs,
	},
	{
		Width:  2104,
		Height: 1560,
		MaxFPS: Fract{Numerator: 10000, Denominator: 600000},
		ExpDef: 0x0c00,
		HTSDef: 0x0498,
		VTSDef: 0x0c7c,
		regs:   mode2104x1560Regs,
	},
	{
		Width:  2080,
		Height: 1170,
		MaxFPS: Fract{Numerator: 10000, Denominator: 600000},
		ExpDef: 0x0c00,
		HTSDef: 0x0498,
		VTSDef: 0x0c7c,
		regs:   mode2080x1170Regs,
	},
}

// resoDist is the Manhattan distance between a mode and a requested
// resolution.
func resoDist(m *Mode, width, height uint32) int {

	dw := int(m.Width) - int(width)

	if dw < 0 {
		dw = -dw
	}

	dh := int(m.Height) - int(height)

	if dh < 0 {
		dh = -dh
	}

	return dw + dh
}

// findBestFit returns the catalog mode closest to the requested
// resolution. A tie keeps the earlier catalog entry; the scan only
// replaces on a strictly smaller distance.
func findBestFit(width, height uint32) *Mode {

	best := 0
	bestDist := -1

	for i := range supportedModes {
		dist := resoDist(&supportedModes[i], width, height)

		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	return &supportedModes[best]
}

// Modes returns the supported mode catalog in selection order.
func Modes() []Mode {

	out := make([]Mode, len(supportedModes))
	copy(out, supportedModes)

	return out
}

// TryFormat returns the mode that a SetFormat call with the same
// resolution would select, without changing the active mode.
func (d *OV13B10) TryFormat(width, height uint32) Mode {
	return *findBestFit(width, height)
}

// SetFormat selects the best-fit mode for the requested resolution, makes
// it the active mode and re-derives the blanking and exposure ranges from
// it. The active mode cannot change while the sensor is streaming.
func (d *OV13B10) SetFormat(width, height uint32) (Mode, error) {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.streaming {
		return Mode{}, fmt.Errorf("%w: change format", ErrStreaming)
	}

	mode := findBestFit(width, height)
	d.curMode = mode
	d.ctrls.resetToMode(mode)

	d.log.Printf("Set format %dx%d", mode.Width, mode.Height)

	return *mode, nil
}

// Format returns the active mode.
func (d *OV13B10) Format() Mode {

	d.mu.Lock()
	defer d.mu.Unlock()

	return *d.curMode
}

// FrameInterval returns the frame interval of the active mode.
func (d *OV13B10) FrameInterval() Fract {

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.curMode.MaxFPS
}
