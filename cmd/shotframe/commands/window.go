package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shotframe/shotframe/internal/emit"
	"github.com/shotframe/shotframe/internal/selection"
	"github.com/shotframe/shotframe/internal/window"
)

var windowFirst bool

var windowCmd = &cobra.Command{
	Use:   "window APP_ID",
	Short: "Capture a window by application id",
	Long: `Capture the window whose application id matches APP_ID. When several
windows match, the command fails unless --first picks the frontmost match.`,
	Example: `  # Capture the firefox window
  shotframe window firefox

  # Several terminals open: take the frontmost
  shotframe window kitty --first`,
	Args: cobra.ExactArgs(1),
	RunE: runWindow,
}

func init() {
	rootCmd.AddCommand(windowCmd)
	windowCmd.Flags().BoolVar(&windowFirst, "first", false, "use the frontmost match when ambiguous")
}

func runWindow(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	provider := windowProvider()
	if provider == nil {
		return fmt.Errorf("no window provider available (need WAYFIRE_SOCKET or DISPLAY)")
	}
	defer provider.Close()

	handles, err := provider.Snapshot()
	if err != nil {
		return fmt.Errorf("listing windows: %w", err)
	}
	ix := window.NewIndex(handles)

	applyDelay(cmd)

	a.emitter.Emit(emit.OperationStarted, map[string]any{"mode": "window", "app_id": args[0]})

	frames, l, err := a.freezeLayout(cmd.Context())
	if err != nil {
		return err
	}

	outcome, err := selection.CommitWindow(l, ix, args[0], windowFirst)
	if err != nil {
		return err
	}

	if err := a.deliver(outcome, frames); err != nil {
		return err
	}
	a.emitter.Emit(emit.OperationCompleted, map[string]any{
		"cancelled": false,
		"source":    string(outcome.Source),
		"app_id":    outcome.Window.AppID,
	})
	return nil
}
