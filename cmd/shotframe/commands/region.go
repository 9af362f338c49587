package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shotframe/shotframe/internal/emit"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/selection"
)

var regionCmd = &cobra.Command{
	Use:   "region X,Y,W,H",
	Short: "Capture a fixed region without the overlay",
	Long: `Capture the given rectangle in global logical coordinates. The rectangle
is clamped to the output layout; a rectangle entirely outside it is an error.`,
	Example: `  # Capture a 800x600 region at the origin
  shotframe region 0,0,800,600

  # Capture to the clipboard only
  shotframe region 100,100,640,480 --stdout | wl-copy --type image/png`,
	Args: cobra.ExactArgs(1),
	RunE: runRegion,
}

func init() {
	rootCmd.AddCommand(regionCmd)
}

func runRegion(cmd *cobra.Command, args []string) error {
	rect, err := parseRect(args[0])
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	applyDelay(cmd)

	a.emitter.Emit(emit.OperationStarted, map[string]any{"mode": "region", "rect": rect.String()})

	frames, l, err := a.freezeLayout(cmd.Context())
	if err != nil {
		return err
	}

	outcome, err := selection.CommitRegion(l, rect)
	if err != nil {
		return err
	}

	if err := a.deliver(outcome, frames); err != nil {
		return err
	}
	a.emitter.Emit(emit.OperationCompleted, map[string]any{"cancelled": false, "source": string(outcome.Source)})
	return nil
}

func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("region must be X,Y,W,H, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("region component %q is not an integer", p)
		}
		vals[i] = v
	}
	return geometry.Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}
