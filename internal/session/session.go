// Package session runs the interactive capture loop: freeze the screen,
// snapshot the window stack, then drive the selection state machine from a
// serialized event stream until it terminates, re-rendering the overlay
// after every transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/shotframe/shotframe/internal/capture"
	"github.com/shotframe/shotframe/internal/emit"
	"github.com/shotframe/shotframe/internal/gesture"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/logger"
	"github.com/shotframe/shotframe/internal/magnifier"
	"github.com/shotframe/shotframe/internal/render"
	"github.com/shotframe/shotframe/internal/selection"
	"github.com/shotframe/shotframe/internal/window"
)

// Event is one raw input delivered to the loop. Exactly one field is set.
type Event struct {
	Pointer *gesture.PointerEvent
	Key     *gesture.KeyEvent
	// Upgrade requests an immediate full-screen commit; injected by SIGUSR1
	// or the control server when a second invocation double-taps.
	Upgrade bool
}

// EventSource delivers input events. The channel closing ends the session
// as a cancellation.
type EventSource interface {
	Events() <-chan Event
	Close() error
}

// Presenter displays composed overlay frames, one surface per output.
type Presenter interface {
	Present(output string, frame *image.RGBA) error
	Close() error
}

// NopPresenter discards frames; used headless and in tests.
type NopPresenter struct{}

func (NopPresenter) Present(string, *image.RGBA) error { return nil }
func (NopPresenter) Close() error                      { return nil }

// Options bundle the tunables for one session.
type Options struct {
	Gesture       gesture.Options
	Selection     selection.Options
	MagnifierZoom int
	ShowHints     bool
	// FreezeTimeout bounds the initial screen freeze; exceeding it aborts
	// the session with ErrCaptureUnavailable.
	FreezeTimeout time.Duration
}

// DefaultOptions mirror the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{
		Gesture:       gesture.DefaultOptions(),
		Selection:     selection.DefaultOptions(),
		MagnifierZoom: magnifier.DefaultZoom,
		ShowHints:     true,
		FreezeTimeout: 10 * time.Second,
	}
}

// Result is what an interactive session produced.
type Result struct {
	Outcome selection.Outcome
	// Frames are the frozen per-output buffers the outcome's device
	// rectangles index into.
	Frames []*capture.FrameBuffer
}

// Runner owns one interactive session.
type Runner struct {
	capturer  capture.Capturer
	windows   window.Provider
	presenter Presenter
	emitter   *emit.Emitter
	opts      Options
	log       zerolog.Logger

	// upgrades carries external full-screen requests into the loop.
	upgrades chan struct{}
}

// NewRunner assembles a session runner. windows may be nil when no window
// provider is available; hover and window-click then never trigger.
func NewRunner(capturer capture.Capturer, windows window.Provider, presenter Presenter, emitter *emit.Emitter, opts Options) *Runner {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if emitter == nil {
		emitter = emit.Nop()
	}
	if opts.FreezeTimeout <= 0 {
		opts.FreezeTimeout = DefaultOptions().FreezeTimeout
	}
	return &Runner{
		capturer:  capturer,
		windows:   windows,
		presenter: presenter,
		emitter:   emitter,
		opts:      opts,
		log:       logger.WithComponent("session"),
		upgrades:  make(chan struct{}, 1),
	}
}

// Upgrade requests an immediate full-screen commit from outside the loop.
// Safe to call from signal handlers and HTTP handlers; duplicate requests
// coalesce.
func (r *Runner) Upgrade() {
	select {
	case r.upgrades <- struct{}{}:
	default:
	}
}

// Run executes the session until the state machine terminates or ctx is
// cancelled. Cancellation via ctx yields a cancelled outcome, not an error.
func (r *Runner) Run(ctx context.Context, events EventSource, start geometry.Point) (*Result, error) {
	frames, l, err := r.freeze(ctx)
	if err != nil {
		return nil, err
	}

	ix := r.snapshotWindows()
	sess := selection.NewSession(l, ix, r.opts.Selection, start)
	det := gesture.NewDetector(r.opts.Gesture)
	comp := render.New(frames, magnifier.New(r.opts.MagnifierZoom), r.opts.ShowHints)

	r.emitter.Emit(emit.OperationStarted, map[string]any{
		"mode":    "interactive",
		"outputs": len(frames),
		"windows": len(ix.Handles()),
	})

	r.present(comp, sess, frames)

	for !sess.Done() {
		select {
		case <-ctx.Done():
			sess = selection.Transition(sess, gesture.Signal{Kind: gesture.Cancel})

		case <-r.upgrades:
			r.log.Debug().Msg("external fullscreen upgrade")
			sess = selection.Transition(sess, gesture.Signal{Kind: gesture.FullScreen})

		case ev, ok := <-events.Events():
			if !ok {
				sess = selection.Transition(sess, gesture.Signal{Kind: gesture.Cancel})
				break
			}
			for _, sig := range r.classify(det, ev) {
				sess = selection.Transition(sess, sig)
				if sess.Done() {
					break
				}
			}
		}

		if !sess.Done() {
			r.present(comp, sess, frames)
		}
	}

	outcome := *sess.Outcome
	if outcome.Cancelled {
		r.emitter.Emit(emit.OperationCompleted, map[string]any{"cancelled": true})
	} else {
		r.emitter.Emit(emit.OperationCompleted, map[string]any{
			"cancelled": false,
			"source":    string(outcome.Source),
			"rect":      outcome.Rect.String(),
		})
	}
	return &Result{Outcome: outcome, Frames: frames}, nil
}

func (r *Runner) classify(det *gesture.Detector, ev Event) []gesture.Signal {
	switch {
	case ev.Upgrade:
		return []gesture.Signal{{Kind: gesture.FullScreen}}
	case ev.Pointer != nil:
		return det.FeedPointer(*ev.Pointer)
	case ev.Key != nil:
		return det.FeedKey(*ev.Key)
	}
	return nil
}

// freeze captures all outputs within the configured timeout and builds the
// layout from the frozen buffers. Failure is fatal: the overlay never shows
// a stale or partial frame.
func (r *Runner) freeze(ctx context.Context) ([]*capture.FrameBuffer, *layout.Layout, error) {
	fctx, cancel := context.WithTimeout(ctx, r.opts.FreezeTimeout)
	defer cancel()

	frames, err := r.capturer.Freeze(fctx)
	if err != nil {
		if errors.Is(fctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: freeze timed out after %s", capture.ErrCaptureUnavailable, r.opts.FreezeTimeout)
		}
		r.emitter.EmitError("freeze", err)
		return nil, nil, err
	}
	if len(frames) == 0 {
		err := fmt.Errorf("%w: no outputs frozen", capture.ErrCaptureUnavailable)
		r.emitter.EmitError("freeze", err)
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

// snapshotWindows queries the provider once; the stack is frozen for the
// whole session just like the pixels. A failed or absent provider degrades
// to region-only selection.
func (r *Runner) snapshotWindows() *window.Index {
	if r.windows == nil {
		return window.NewIndex(nil)
	}
	handles, err := r.windows.Snapshot()
	if err != nil {
		r.log.Debug().Err(err).Msg("window snapshot unavailable, region-only session")
		return window.NewIndex(nil)
	}
	return window.NewIndex(handles)
}

func (r *Runner) present(comp *render.Compositor, sess selection.Session, frames []*capture.FrameBuffer) {
	for _, fb := range frames {
		img, err := comp.Compose(sess, fb.Output.Name)
		if err != nil {
			r.log.Warn().Err(err).Str("output", fb.Output.Name).Msg("compose failed")
			continue
		}
		if err := r.presenter.Present(fb.Output.Name, img); err != nil {
			r.log.Warn().Err(err).Str("output", fb.Output.Name).Msg("present failed")
		}
	}
}
