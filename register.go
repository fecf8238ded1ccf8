package ov13b10

import "fmt"

const (
	// Chip identification register, 3 bytes
	REG_CHIP_ID uint16 = 0x300a

	// Mode control register toggling streaming and software standby
	REG_CTRL_MODE uint16 = 0x0100

	// Exposure in lines, 3 bytes
	REG_EXPOSURE uint16 = 0x3500

	// Analogue gain, split across a high and a low register
	REG_GAIN_H uint16 = 0x350a
	REG_GAIN_L uint16 = 0x350b

	// Vertical total size (frame length in lines), 2 bytes
	REG_VTS uint16 = 0x380e

	// Test pattern control register
	REG_TEST_PATTERN uint16 = 0x5080

	// REG_NULL terminates a register program
	REG_NULL uint16 = 0xffff
)

// Values for REG_CTRL_MODE.
const (
	MODE_SW_STANDBY uint8 = 0x00
	MODE_STREAMING  uint8 = 0x01
)

// Register byte lengths accepted by writeReg and readReg.
const (
	regValue8Bit  uint32 = 1
	regValue16Bit uint32 = 2
	regValue24Bit uint32 = 3
)

// Bus is the byte-level register transport the driver runs on. A write
// carries the big-endian register address followed by payload bytes; a
// read is a bare address write followed immediately by ReadBytes.
// *i2c.Options from github.com/swdee/go-i2c implements it.
type Bus interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
}

// regVal is a single entry of a register program.
type regVal struct {
	addr uint16
	val  uint8
}

// writeReg writes the low length bytes of value to a register, most
// significant byte first. Registers are written up to 4 bytes at a time.
func (d *OV13B10) writeReg(reg uint16, length, value uint32) error {

	if length == 0 || length > 4 {
		return fmt.Errorf("%w: register byte length %d", ErrInvalidArgument, length)
	}

	buf := make([]byte, 0, 6)
	buf = append(buf, byte(reg>>8), byte(reg))

	for i := length; i > 0; i-- {
		buf = append(buf, byte(value>>(8*(i-1))))
	}

	n, err := d.bus.WriteBytes(buf)

	if err != nil {
		return fmt.Errorf("%w: write reg 0x%04x: %v", ErrBus, reg, err)
	}

	if n != len(buf) {
		return fmt.Errorf("%w: write reg 0x%04x: sent %d of %d bytes",
			ErrBus, reg, n, len(buf))
	}

	return nil
}

// readReg reads length bytes from a register into the low bytes of a
// big-endian accumulator. Registers are read up to 4 bytes at a time.
func (d *OV13B10) readReg(reg uint16, length uint32) (uint32, error) {

	if length == 0 || length > 4 {
		return 0, fmt.Errorf("%w: register byte length %d", ErrInvalidArgument, length)
	}

	// Write the register address.
	addr := []byte{byte(reg >> 8), byte(reg)}

	n, err := d.bus.WriteBytes(addr)

	if err != nil {
		return 0, fmt.Errorf("%w: read reg 0x%04x: %v", ErrBus, reg, err)
	}

	if n != len(addr) {
		return 0, fmt.Errorf("%w: read reg 0x%04x: sent %d of %d address bytes",
			ErrBus, reg, n, len(addr))
	}

	buf := make([]byte, length)
	n, err = d.bus.ReadBytes(buf)

	if err != nil {
		return 0, fmt.Errorf("%w: read reg 0x%04x: %v", ErrBus, reg, err)
	}

	if n != len(buf) {
		return 0, fmt.Errorf("%w: read reg 0x%04x: received %d of %d bytes",
			ErrBus, reg, n, len(buf))
	}

	var val uint32

	for _, b := range buf {
		val = val<<8 | uint32(b)
	}

	return val, nil
}

// writeProgram applies a register program entry by entry until its
// REG_NULL terminator. The first failing write aborts the program; there
// is no rollback as the entries already written are live on the sensor.
func (d *OV13B10) writeProgram(regs []regVal) error {

	for _, r := range regs {
		if r.addr == REG_NULL {
			break
		}

		if err := d.writeReg(r.addr, regValue8Bit, uint32(r.val)); err != nil {
			return err
		}
	}

	return nil
}
