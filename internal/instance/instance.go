// Package instance enforces single-instance semantics and implements the
// double-tap protocol: launching the tool while an interactive session is
// already running upgrades that session to a full-screen capture instead of
// starting a second overlay.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/shotframe/shotframe/internal/logger"
)

// DoubleTapWindow is how recent a previous launch must be for a second
// launch to count as a double-tap.
const DoubleTapWindow = 500 * time.Millisecond

// ErrAlreadyRunning is returned by Acquire when another instance holds the
// lock.
var ErrAlreadyRunning = errors.New("another instance is running")

// Lock is an exclusive advisory lock scoped to the user's runtime directory.
type Lock struct {
	path string
	file *os.File
}

// RuntimeDir returns the per-user directory for lock and stamp files.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Acquire takes the instance lock, writing the holder's pid into the lock
// file. Returns ErrAlreadyRunning when the lock is held elsewhere.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, "shotframe.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	}
	return &Lock{path: path, file: f}, nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
}

// RunningPid reads the pid recorded in the lock file and verifies the
// process still exists. Returns 0 when no live instance is found.
func RunningPid(dir string) int {
	data, err := os.ReadFile(filepath.Join(dir, "shotframe.lock"))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	// Signal 0 probes for existence without delivering anything.
	if err := syscall.Kill(pid, 0); err != nil {
		return 0
	}
	return pid
}

// SignalFullscreen asks the running instance to commit a full-screen
// capture.
func SignalFullscreen(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGUSR1); err != nil {
		return fmt.Errorf("signaling pid %d: %w", pid, err)
	}
	clog := logger.WithComponent("instance")
	clog.Debug().Int("pid", pid).Msg("fullscreen signal sent")
	return nil
}

// Stamp tracks launch times for the double-tap check when no interactive
// session is running yet.
type Stamp struct {
	path   string
	window time.Duration
	now    func() time.Time
}

// NewStamp creates a stamp tracker in dir.
func NewStamp(dir string) *Stamp {
	return &Stamp{
		path:   filepath.Join(dir, "shotframe.stamp"),
		window: DoubleTapWindow,
		now:    time.Now,
	}
}

// Touch records this launch and reports whether it completes a double-tap:
// true when a previous launch is recorded within the window. A hit consumes
// the stamp so a third tap starts a fresh pair.
func (s *Stamp) Touch() bool {
	now := s.now()

	if data, err := os.ReadFile(s.path); err == nil {
		if nanos, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil {
			prev := time.Unix(0, nanos)
			if now.Sub(prev) >= 0 && now.Sub(prev) < s.window {
				_ = os.Remove(s.path)
				return true
			}
		}
	}

	_ = os.WriteFile(s.path, []byte(strconv.FormatInt(now.UnixNano(), 10)), 0o600)
	return false
}

// Clear removes any recorded launch time.
func (s *Stamp) Clear() {
	_ = os.Remove(s.path)
}
