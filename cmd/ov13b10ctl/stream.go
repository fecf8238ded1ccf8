package main

import (
	"fmt"
	"time"

	"github.com/maruel/interrupt"
	"github.com/spf13/cobra"
)

var (
	streamWidth    uint32
	streamHeight   uint32
	streamExposure uint32
	streamGain     uint32
	streamVBlank   uint32
	streamPattern  uint32
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream the best-fit mode until interrupted",
	Long: `Selects the catalog mode closest to the requested resolution,
applies the given control values and streams until Ctrl-C.

Examples:
  ov13b10ctl stream --width 4208 --height 3120        # Full resolution
  ov13b10ctl stream --width 2104 --height 1560 --pattern 1`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().Uint32Var(&streamWidth, "width", 4208,
		"requested frame width in pixels")
	streamCmd.Flags().Uint32Var(&streamHeight, "height", 3120,
		"requested frame height in pixels")
	streamCmd.Flags().Uint32Var(&streamExposure, "exposure", 0,
		"exposure in lines, 0 keeps the mode default")
	streamCmd.Flags().Uint32Var(&streamGain, "gain", 0,
		"analogue gain code, 0 keeps the default")
	streamCmd.Flags().Uint32Var(&streamVBlank, "vblank", 0,
		"vertical blanking in lines, 0 keeps the mode default")
	streamCmd.Flags().Uint32Var(&streamPattern, "pattern", 0,
		"test pattern menu index, 0 disables")
}

func runStream(cmd *cobra.Command, args []string) error {

	sensor, bus, err := openSensor()

	if err != nil {
		return err
	}

	defer bus.Close()
	defer sensor.PowerOff()

	mode, err := sensor.SetFormat(streamWidth, streamHeight)

	if err != nil {
		return err
	}

	fmt.Printf("Streaming %dx%d\n", mode.Width, mode.Height)

	if streamVBlank != 0 {
		if err := sensor.SetVBlank(streamVBlank); err != nil {
			return err
		}
	}

	if streamExposure != 0 {
		if err := sensor.SetExposure(streamExposure); err != nil {
			return err
		}
	}

	if streamGain != 0 {
		if err := sensor.SetAnalogGain(streamGain); err != nil {
			return err
		}
	}

	if streamPattern != 0 {
		if err := sensor.SetTestPattern(streamPattern); err != nil {
			return err
		}
	}

	if err := sensor.StartStreaming(); err != nil {
		return err
	}

	interrupt.HandleCtrlC()

	for !interrupt.IsSet() {
		time.Sleep(100 * time.Millisecond)
	}

	sensor.StopStreaming()

	return nil
}
