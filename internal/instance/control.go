package instance

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/shotframe/shotframe/internal/logger"
)

// ControlServer exposes a local HTTP API over a unix socket while an
// interactive session runs. It carries the same upgrade path as SIGUSR1 for
// callers that prefer a request/response round trip, plus a status endpoint
// and the live event stream.
type ControlServer struct {
	socketPath string
	router     *mux.Router
	srv        *http.Server
	log        zerolog.Logger

	fullscreen func()
	status     func() map[string]any
}

// NewControlServer creates a control server rooted at dir. fullscreen is
// invoked on POST /fullscreen; status backs GET /status. An events handler
// may be nil.
func NewControlServer(dir string, fullscreen func(), status func() map[string]any, events http.Handler) *ControlServer {
	c := &ControlServer{
		socketPath: filepath.Join(dir, "shotframe.sock"),
		router:     mux.NewRouter(),
		log:        logger.WithComponent("control"),
		fullscreen: fullscreen,
		status:     status,
	}

	c.router.HandleFunc("/fullscreen", c.handleFullscreen).Methods("POST")
	c.router.HandleFunc("/status", c.handleStatus).Methods("GET")
	if events != nil {
		c.router.Handle("/events", events)
	}
	return c
}

// SocketPath returns the unix socket the server listens on.
func (c *ControlServer) SocketPath() string { return c.socketPath }

// Start listens on the unix socket and serves until Stop. A stale socket
// from a crashed instance is removed first; the live-instance check is the
// flock, not the socket.
func (c *ControlServer) Start() error {
	_ = os.Remove(c.socketPath)

	ln, err := net.Listen("unix", c.socketPath)
	if err != nil {
		return err
	}

	c.srv = &http.Server{Handler: c.router}
	go func() {
		if err := c.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.log.Warn().Err(err).Msg("control server stopped")
		}
	}()
	c.log.Debug().Str("socket", c.socketPath).Msg("control server listening")
	return nil
}

// Stop shuts the server down and removes the socket.
func (c *ControlServer) Stop() {
	if c.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.srv.Shutdown(ctx)
	}
	_ = os.Remove(c.socketPath)
}

func (c *ControlServer) handleFullscreen(w http.ResponseWriter, r *http.Request) {
	c.fullscreen()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (c *ControlServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c.status())
}

// RequestFullscreen connects to a running instance's control socket and
// asks it to commit a full-screen capture. Falls back to SIGUSR1 when the
// socket is gone.
func RequestFullscreen(dir string, pid int) error {
	socketPath := filepath.Join(dir, "shotframe.sock")
	client := http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
		Timeout: time.Second,
	}

	resp, err := client.Post("http://shotframe/fullscreen", "application/json", nil)
	if err != nil {
		return SignalFullscreen(pid)
	}
	resp.Body.Close()
	return nil
}
