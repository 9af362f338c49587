package commands

import (
	"github.com/spf13/cobra"
)

var fullMonitor string

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Capture the whole screen",
	Long: `Capture every output, or a single one with --monitor. Equivalent to the
interactive double-tap shortcut.`,
	Example: `  # Capture all outputs
  shotframe full

  # Capture one output
  shotframe full --monitor DP-1`,
	Args: cobra.NoArgs,
	RunE: runFull,
}

func init() {
	rootCmd.AddCommand(fullCmd)
	fullCmd.Flags().StringVar(&fullMonitor, "monitor", "", "capture only the named output")
}

func runFull(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	return captureFullScreen(cmd, a, fullMonitor)
}
