package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Power the sensor up and verify its chip id",
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {

	sensor, bus, err := openSensor()

	if err != nil {
		return err
	}

	defer bus.Close()
	defer sensor.PowerOff()

	info := sensor.Info()
	mode := sensor.Format()

	fmt.Printf("Found %s sensor on %s\n", info.Sensor, busPath)
	fmt.Printf("Default mode: %dx%d\n", mode.Width, mode.Height)

	return nil
}
