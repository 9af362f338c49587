package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shotframe/shotframe/internal/emit"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/instance"
	"github.com/shotframe/shotframe/internal/logger"
	"github.com/shotframe/shotframe/internal/magnifier"
	"github.com/shotframe/shotframe/internal/selection"
	"github.com/shotframe/shotframe/internal/session"
	"github.com/shotframe/shotframe/internal/window"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	dir := instance.RuntimeDir()
	stamp := instance.NewStamp(dir)
	doubleTap := stamp.Touch()

	// Any launch while a session is already showing its overlay upgrades
	// that session to a full-screen capture; the overlay owns the screen
	// and a competing one is never started.
	if handled, err := upgradeRunning(dir); handled {
		return err
	}

	lock, err := instance.Acquire(dir)
	if err != nil {
		if errors.Is(err, instance.ErrAlreadyRunning) {
			// Lost the race to another launch; defer to the winner.
			if handled, uerr := upgradeRunning(dir); handled {
				return uerr
			}
		}
		return err
	}
	defer lock.Release()

	if doubleTap {
		// Double-tap with no session running: skip the overlay entirely.
		return captureFullScreen(cmd, a, "")
	}

	applyDelay(cmd)

	provider := windowProvider()
	if provider != nil {
		defer provider.Close()
	}

	opts := session.DefaultOptions()
	opts.Gesture.JitterThreshold = a.cfg.Interaction.JitterThreshold
	opts.Selection.MinArea = a.cfg.Interaction.MinArea
	opts.Selection.NudgeStep = a.cfg.Interaction.NudgeStep
	opts.MagnifierZoom = a.cfg.Interaction.MagnifierZoom
	opts.ShowHints = a.cfg.Interaction.ShowHints
	if opts.MagnifierZoom <= 0 {
		opts.MagnifierZoom = magnifier.DefaultZoom
	}

	runner := session.NewRunner(a.capturer, provider, nil, a.emitter, opts)

	// The live event stream and the fullscreen upgrade both ride the
	// control socket; SIGUSR1 is the no-dependency fallback.
	broadcaster := emit.NewBroadcaster()
	defer broadcaster.Close()
	a.emitter.AddHandler(broadcaster.Handler)

	control := instance.NewControlServer(dir, runner.Upgrade, func() map[string]any {
		return map[string]any{"pid": os.Getpid(), "mode": "interactive"}
	}, broadcaster)
	if err := control.Start(); err != nil {
		clog := logger.WithComponent("instance")
		clog.Warn().Err(err).Msg("control server unavailable")
	} else {
		defer control.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGUSR1 {
				runner.Upgrade()
			} else {
				cancel()
				return
			}
		}
	}()

	// The compositor-side frontend hides the real cursor while the overlay
	// draws its own crosshair.
	start := geometry.Point{}
	if wp, ok := provider.(*window.WayfireProvider); ok {
		if p, found := wp.CursorPosition(); found {
			start = p
		}
		wp.HideCursor()
		defer wp.ShowCursor()
	}

	events := session.NewReaderSource(os.Stdin)
	defer events.Close()

	res, err := runner.Run(ctx, events, start)
	if err != nil {
		return err
	}
	defer a.emitter.Emit(emit.Shutdown, nil)

	if res.Outcome.Cancelled {
		return errCancelled
	}
	return a.deliver(res.Outcome, res.Frames)
}

// captureFullScreen is the shared non-interactive full-screen path, used by
// the full subcommand and the double-tap shortcut.
func captureFullScreen(cmd *cobra.Command, a *app, monitor string) error {
	applyDelay(cmd)

	a.emitter.Emit(emit.OperationStarted, map[string]any{"mode": "fullscreen", "monitor": monitor})

	frames, l, err := a.freezeLayout(cmd.Context())
	if err != nil {
		return err
	}

	outcome, err := selection.CommitFullScreen(l, monitor)
	if err != nil {
		return err
	}

	if err := a.deliver(outcome, frames); err != nil {
		return err
	}
	a.emitter.Emit(emit.OperationCompleted, map[string]any{"cancelled": false, "source": string(outcome.Source)})
	return nil
}

// upgradeRunning asks an already-running interactive session, if any, to
// commit a full-screen capture. Reports whether a running session handled
// the launch.
func upgradeRunning(dir string) (bool, error) {
	pid := instance.RunningPid(dir)
	if pid == 0 {
		return false, nil
	}
	clog := logger.WithComponent("instance")
	clog.Info().Int("pid", pid).Msg("upgrading running session to fullscreen")
	return true, instance.RequestFullscreen(dir, pid)
}
