// Package output persists a committed capture and routes it to the
// configured destinations: a file on disk, the clipboard, a desktop
// notification, and a shutter sound. Only the file write can fail the
// operation; every other sink is best-effort.
package output

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/shotframe/shotframe/internal/logger"
)

// Format is the on-disk encoding for saved captures.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatWebP Format = "webp"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", "":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported format %q (png, jpg, webp)", s)
	}
}

// Options select the destinations and encoding for one capture.
type Options struct {
	Dir     string
	Format  Format
	Quality int // JPEG quality, 1-100

	Clipboard bool
	Notify    bool
	Sound     bool
	Stdout    bool // write encoded bytes to stdout instead of a file
}

// Result reports where the capture went, with the dimensions and timestamp
// consumers need to render notifications or JSON events.
type Result struct {
	Path      string
	Width     int
	Height    int
	Timestamp time.Time
	Bytes     int
	Clipboard bool
}

// Writer persists captures. It holds no per-capture state.
type Writer struct {
	opts Options
	log  zerolog.Logger

	// now and run are swapped out in tests. run feeds stdin to the command
	// when non-nil.
	now func() time.Time
	run func(stdin io.Reader, name string, args ...string) error
}

// NewWriter creates a writer for the given destinations.
func NewWriter(opts Options) *Writer {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 90
	}
	return &Writer{
		opts: opts,
		log:  logger.WithComponent("output"),
		now: time.Now,
		run: func(stdin io.Reader, name string, args ...string) error {
			cmd := exec.Command(name, args...)
			cmd.Stdin = stdin
			return cmd.Run()
		},
	}
}

// Save encodes img and routes it to every configured destination. The file
// write (or stdout write) happens first; sinks run only after the capture is
// durably stored, and their failures are logged but never propagated.
func (w *Writer) Save(img *image.RGBA) (Result, error) {
	data, format, err := w.encode(img)
	if err != nil {
		return Result{}, err
	}

	b := img.Bounds()
	res := Result{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Timestamp: w.now(),
		Bytes:     len(data),
	}

	if w.opts.Stdout {
		if _, err := os.Stdout.Write(data); err != nil {
			return Result{}, fmt.Errorf("writing capture to stdout: %w", err)
		}
	} else {
		path := w.targetPath(res.Timestamp, format)
		if err := writeFileAtomic(path, data); err != nil {
			return Result{}, fmt.Errorf("saving capture: %w", err)
		}
		res.Path = path
	}

	res.Clipboard = w.copyToClipboard(data, format)
	w.notify(res)
	w.playSound()
	return res, nil
}

// encode serializes the image. WebP has no encoder in the stdlib or the
// dependency set, so it degrades to PNG with a warning rather than failing.
func (w *Writer) encode(img *image.RGBA) ([]byte, Format, error) {
	format := w.opts.Format
	if format == FormatWebP {
		w.log.Warn().Msg("webp encoding unavailable, falling back to png")
		format = FormatPNG
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: w.opts.Quality}); err != nil {
			return nil, "", fmt.Errorf("encoding jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("encoding png: %w", err)
		}
		format = FormatPNG
	}
	return buf.Bytes(), format, nil
}

// targetPath builds screenshot_<unix-timestamp>.<ext> under the configured
// directory.
func (w *Writer) targetPath(at time.Time, format Format) string {
	name := fmt.Sprintf("screenshot_%d.%s", at.Unix(), format)
	return filepath.Join(w.opts.Dir, name)
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a partial capture.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shotframe-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (w *Writer) copyToClipboard(data []byte, format Format) bool {
	if !w.opts.Clipboard {
		return false
	}
	mime := "image/png"
	if format == FormatJPEG {
		mime = "image/jpeg"
	}

	if err := w.run(bytes.NewReader(data), "wl-copy", "--type", mime); err != nil {
		w.log.Warn().Err(err).Msg("clipboard copy failed")
		return false
	}
	return true
}

func (w *Writer) notify(res Result) {
	if !w.opts.Notify {
		return
	}
	body := fmt.Sprintf("Saved %dx%d to %s", res.Width, res.Height, res.Path)
	if res.Path == "" {
		body = fmt.Sprintf("Wrote %dx%d to stdout", res.Width, res.Height)
	}
	if err := w.run(nil, "notify-send", "--app-name=shotframe", "Screenshot captured", body); err != nil {
		w.log.Debug().Err(err).Msg("notification failed")
	}
}

func (w *Writer) playSound() {
	if !w.opts.Sound {
		return
	}
	if err := w.run(nil, "canberra-gtk-play", "-i", "camera-shutter"); err != nil {
		w.log.Debug().Err(err).Msg("shutter sound failed")
	}
}
