package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shotframe/shotframe/internal/capture"
	"github.com/shotframe/shotframe/internal/config"
	"github.com/shotframe/shotframe/internal/emit"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/output"
	"github.com/shotframe/shotframe/internal/selection"
	"github.com/shotframe/shotframe/internal/window"
)

// app bundles the collaborators every command needs.
type app struct {
	cfg      config.Config
	emitter  *emit.Emitter
	writer   *output.Writer
	capturer capture.Capturer
}

// setup loads configuration, applies flag overrides, initializes logging and
// picks the capture backend.
func setup(cmd *cobra.Command) (*app, error) {
	mgr := config.NewManager(cfgFile)
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	initLogging(cmd, cfg.LogLevel)

	flags := cmd.Flags()
	if v, _ := flags.GetString("output"); v != "" {
		cfg.Output.Dir = v
	}
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Output.Format = v
	}
	if v, _ := flags.GetInt("quality"); v > 0 {
		cfg.Output.Quality = v
	}
	if v, _ := flags.GetBool("no-clipboard"); v {
		cfg.Output.Clipboard = false
	}
	if v, _ := flags.GetBool("no-notify"); v {
		cfg.Output.Notify = false
	}
	if v, _ := flags.GetBool("no-sound"); v {
		cfg.Output.Sound = false
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	emitter := emit.Nop()
	if jsonEvents, _ := flags.GetBool("json"); jsonEvents {
		emitter = emit.New("shotframe", os.Stderr)
	}
	emitter.Emit(emit.ConfigResolved, map[string]any{
		"config": mgr.Path(),
		"dir":    cfg.Output.Dir,
		"format": string(format),
	})

	toStdout, _ := flags.GetBool("stdout")
	writer := output.NewWriter(output.Options{
		Dir:       cfg.Output.Dir,
		Format:    format,
		Quality:   cfg.Output.Quality,
		Clipboard: cfg.Output.Clipboard && !toStdout,
		Notify:    cfg.Output.Notify && !toStdout,
		Sound:     cfg.Output.Sound && !toStdout,
		Stdout:    toStdout,
	})

	capturer, err := capture.Select(
		capture.NewSubprocess(cfg.Capture.Binary),
		capture.NewScreenBackend(),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, emitter: emitter, writer: writer, capturer: capturer}, nil
}

// windowProvider picks the display-server integration for the current
// environment, or nil when none applies.
func windowProvider() window.Provider {
	var p window.Provider
	switch {
	case os.Getenv("WAYFIRE_SOCKET") != "":
		p = window.NewWayfireProvider(os.Getenv("WAYFIRE_SOCKET"))
	case os.Getenv("DISPLAY") != "":
		p = window.NewX11Provider()
	default:
		return nil
	}
	if err := p.Connect(); err != nil {
		return nil
	}
	return p
}

// applyDelay honors --delay before any pixels are touched.
func applyDelay(cmd *cobra.Command) {
	if secs, _ := cmd.Flags().GetInt("delay"); secs > 0 {
		time.Sleep(time.Duration(secs) * time.Second)
	}
}

// freezeLayout lists outputs, builds the layout, and freezes all frames
// within the configured capture timeout.
func (a *app) freezeLayout(ctx context.Context) ([]*capture.FrameBuffer, *layout.Layout, error) {
	timeout := time.Duration(a.cfg.Capture.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frames, err := a.capturer.Freeze(fctx)
	if err != nil {
		a.emitter.EmitError("freeze", err)
		return nil, nil, err
	}

	outputs := make([]layout.Output, len(frames))
	for i, fb := range frames {
		outputs[i] = fb.Output
	}
	l, err := layout.New(outputs)
	if err != nil {
		return nil, nil, err
	}
	return frames, l, nil
}

// deliver crops the committed device rectangles out of the frozen frames and
// routes each through the output writer. Paths go to stdout for scripts.
func (a *app) deliver(outcome selection.Outcome, frames []*capture.FrameBuffer) error {
	crops, err := capture.CropFrames(frames, outcome.DeviceRects)
	if err != nil {
		a.emitter.EmitError("crop", err)
		return err
	}

	for _, crop := range crops {
		res, err := a.writer.Save(crop.Image)
		if err != nil {
			a.emitter.EmitError("save", err)
			return err
		}
		a.emitter.Emit(emit.ArtifactCreated, map[string]any{
			"path":      res.Path,
			"output":    crop.Output,
			"width":     res.Width,
			"height":    res.Height,
			"timestamp": res.Timestamp.UTC().Format(time.RFC3339),
			"bytes":     res.Bytes,
			"source":    string(outcome.Source),
		})
		if res.Path != "" {
			fmt.Println(res.Path)
		}
	}
	return nil
}
