package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/window"
)

var (
	listJSON    bool
	listWindows bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List outputs and windows",
	Long:  `List the active outputs with their layout, or the toplevel windows with --windows.`,
	Example: `  # Outputs in table form
  shotframe list

  # Outputs as JSON for scripting
  shotframe list --json

  # Toplevel windows, front to back
  shotframe list --windows`,
	Args: cobra.NoArgs,
	RunE: runListCmd,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVar(&listWindows, "windows", false, "list windows instead of outputs")
}

func runListCmd(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	if listWindows {
		return listToplevels()
	}

	outputs, err := a.capturer.ListOutputs(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing outputs: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}
	return printOutputsTable(outputs)
}

func printOutputsTable(outputs []layout.Output) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tPOSITION\tLOGICAL\tDEVICE\tSCALE")
	for _, o := range outputs {
		fmt.Fprintf(w, "%s\t%d,%d\t%dx%d\t%dx%d\t%.2f\n",
			o.Name, o.LogicalPos.X, o.LogicalPos.Y,
			o.LogicalW, o.LogicalH, o.DeviceW, o.DeviceH, o.Scale)
	}
	return nil
}

func listToplevels() error {
	provider := windowProvider()
	if provider == nil {
		return fmt.Errorf("no window provider available (need WAYFIRE_SOCKET or DISPLAY)")
	}
	defer provider.Close()

	handles, err := provider.Snapshot()
	if err != nil {
		return fmt.Errorf("listing windows: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(handles)
	}
	return printWindowsTable(handles)
}

func printWindowsTable(handles []window.Handle) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "APP_ID\tTITLE\tGEOMETRY\tZ")
	for _, h := range handles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", h.AppID, h.Title, h.Rect, h.ZOrder)
	}
	return nil
}
