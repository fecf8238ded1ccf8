package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/swdee/go-ov13b10"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the supported modes and test patterns",
	RunE:  runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, args []string) error {

	fmt.Println("Modes:")

	for _, m := range ov13b10.Modes() {
		fps := float64(m.MaxFPS.Denominator) / float64(m.MaxFPS.Numerator)
		fmt.Printf("  %4dx%-4d @ %.0f fps\n", m.Width, m.Height, fps)
	}

	fmt.Println("Test patterns:")

	for i, name := range ov13b10.TestPatterns() {
		fmt.Printf("  %d: %s\n", i, name)
	}

	return nil
}
