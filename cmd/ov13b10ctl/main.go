// ov13b10ctl exercises an OV13B10 sensor over its control bus: probing
// the chip id, listing the mode catalog and running a stream with chosen
// control values.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/swdee/go-i2c"
	"github.com/swdee/go-ov13b10"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"
)

var (
	// Global flags
	busPath  string
	resetPin string
	pwdnPin  string
	powerPin string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "ov13b10ctl",
	Short: "OV13B10 image sensor control tool",
	Long: `Drives an OV13B10 13MP image sensor over I2C: power sequencing,
chip identification, mode selection and streaming control.

Examples:
  ov13b10ctl detect --bus /dev/i2c-1                 # Probe the chip id
  ov13b10ctl modes                                   # List the mode catalog
  ov13b10ctl stream --width 2104 --height 1560       # Stream the binned mode`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&busPath, "bus", "b", "/dev/i2c-0",
		"path to the I2C bus the sensor sits on")
	rootCmd.PersistentFlags().StringVar(&resetPin, "reset-pin", "",
		"GPIO name of the reset line, empty when not wired")
	rootCmd.PersistentFlags().StringVar(&pwdnPin, "pwdn-pin", "",
		"GPIO name of the powerdown line, empty when not wired")
	rootCmd.PersistentFlags().StringVar(&powerPin, "power-pin", "",
		"GPIO name of the power-enable line, empty when not wired")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
}

// openSensor opens the bus and GPIO lines and powers the sensor up. The
// caller owns the returned bus handle.
func openSensor() (*ov13b10.OV13B10, *i2c.Options, error) {

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	bus, err := i2c.New(ov13b10.Address, busPath)

	if err != nil {
		return nil, nil, err
	}

	res := ov13b10.Resources{
		Clock:    &fixedClock{rate: ov13b10.XvclkFreq},
		Supplies: noopSupplies{},
	}

	for _, line := range []struct {
		name string
		dst  *gpio.PinIO
	}{
		{resetPin, &res.Reset},
		{pwdnPin, &res.Pwdn},
		{powerPin, &res.Power},
	} {
		if line.name == "" {
			continue
		}

		p := gpioreg.ByName(line.name)

		if p == nil {
			bus.Close()
			return nil, nil, fmt.Errorf("no GPIO named %q", line.name)
		}

		*line.dst = p
	}

	logger := log.New(io.Discard, "", log.LstdFlags)

	if verbose {
		logger = log.New(os.Stderr, "ov13b10: ", log.LstdFlags)
	}

	sensor, err := ov13b10.NewWithLog(bus, res, ov13b10.ModuleInfo{}, logger)

	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	return sensor, bus, nil
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
