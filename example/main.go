package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/swdee/go-i2c"
	"github.com/swdee/go-ov13b10"
	"periph.io/x/periph/conn/physic"
)

func main() {

	i2cbus := flag.String("b", "/dev/i2c-0", "Path to I2C bus to use")
	flag.Parse()

	// Open I2C bus (adjust bus number as needed)
	i2c, err := i2c.New(ov13b10.Address, *i2cbus)

	if err != nil {
		log.Fatal(err)
	}

	defer i2c.Close()

	// boards with a fixed oscillator and always-on rails only need the
	// stub resources, real boards plug their clock and regulator
	// controls in here
	res := ov13b10.Resources{
		Clock:    &fixedClock{rate: ov13b10.XvclkFreq},
		Supplies: noopSupplies{},
	}

	// create new sensor instance, this powers it up and checks the chip id
	sensor, err := ov13b10.New(i2c, res, ov13b10.ModuleInfo{
		Module: "example",
		Facing: "back",
	})

	if err != nil {
		log.Fatal(err)
	}

	// pick the 60fps binned mode
	mode, err := sensor.SetFormat(2104, 1560)

	if err != nil {
		log.Fatalf("Set format failed: %v", err)
	}

	fi := sensor.FrameInterval()

	fmt.Printf("Selected %dx%d @ %d/%d s/frame\n", mode.Width, mode.Height,
		fi.Numerator, fi.Denominator)

	// tweak exposure before streaming, the value is applied on stream start
	if err := sensor.SetExposure(0x0800); err != nil {
		log.Fatalf("Set exposure failed: %v", err)
	}

	if err := sensor.StartStreaming(); err != nil {
		log.Fatalf("Start streaming failed: %v", err)
	}

	// stream for a bit
	time.Sleep(2 * time.Second)

	sensor.StopStreaming()

	if err := sensor.PowerOff(); err != nil {
		log.Fatalf("Power off failed: %v", err)
	}

	// close I2C connection
	i2c.Close()
}

// fixedClock represents a board oscillator running at a fixed rate.
type fixedClock struct {
	rate physic.Frequency
}

func (c *fixedClock) SetRate(f physic.Frequency) error {

	if f != c.rate {
		return fmt.Errorf("oscillator is fixed at %s", c.rate)
	}

	return nil
}

func (c *fixedClock) Rate() physic.Frequency {
	return c.rate
}

func (c *fixedClock) Enable() error {
	return nil
}

func (c *fixedClock) Disable() error {
	return nil
}

// noopSupplies represents always-on power rails.
type noopSupplies struct{}

func (noopSupplies) Enable() error {
	return nil
}

func (noopSupplies) Disable() error {
	return nil
}
