package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shotframe/shotframe/internal/logger"
)

// errCancelled marks a user cancellation; Execute maps it to exit code 2 so
// wrapping scripts can tell "nothing captured" from a real failure.
var errCancelled = errors.New("cancelled")

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "shotframe",
		Short: "shotframe - interactive screenshot capture for Wayland compositors",
		Long: `shotframe freezes the screen and lets you pick what to capture: drag a
region with pixel-accurate nudging, click a window, or grab everything.

Running it with no subcommand starts an interactive session. A second
invocation within the double-tap window upgrades a running session to an
instant full-screen capture.`,
		RunE: runInteractive,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shotframe/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output directory")
	rootCmd.PersistentFlags().StringP("format", "f", "", "image format (png, jpg, webp)")
	rootCmd.PersistentFlags().Int("quality", 0, "jpeg quality (1-100)")
	rootCmd.PersistentFlags().Bool("no-clipboard", false, "skip the clipboard copy")
	rootCmd.PersistentFlags().Bool("no-notify", false, "skip the desktop notification")
	rootCmd.PersistentFlags().Bool("no-sound", false, "skip the shutter sound")
	rootCmd.PersistentFlags().Bool("silent", false, "suppress all log output")
	rootCmd.PersistentFlags().Bool("stdout", false, "write image bytes to stdout instead of a file")
	rootCmd.PersistentFlags().Bool("json", false, "emit JSON lifecycle events on stderr")
	rootCmd.PersistentFlags().Int("delay", 0, "seconds to wait before capturing")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable log output")

	viper.BindPFlag("output.dir", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output.quality", rootCmd.PersistentFlags().Lookup("quality"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.SetEnvPrefix("SHOTFRAME")
	viper.AutomaticEnv()
}

// Execute runs the root command. Exit codes: 0 on success, 2 when the user
// cancelled, 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errCancelled) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogging applies the resolved log settings. Called by every RunE after
// the config is loaded.
func initLogging(cmd *cobra.Command, level string) {
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	pretty, _ := cmd.Flags().GetBool("pretty")
	silent, _ := cmd.Flags().GetBool("silent")
	logger.Init(level, pretty, silent)
}
