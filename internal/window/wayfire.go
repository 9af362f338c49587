package window

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"time"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/logger"
)

// selfAppID is the overlay's own surface; it is always excluded from
// snapshots so the tool never offers itself as a capture target.
const selfAppID = "shotframe"

// WayfireProvider reads window geometry over the Wayfire IPC socket. All
// operations are best-effort: a missing or unresponsive socket degrades to
// an empty snapshot rather than failing the session.
type WayfireProvider struct {
	socketPath string
	timeout    time.Duration
}

// NewWayfireProvider creates a provider for the given socket path. An empty
// path falls back to the WAYFIRE_SOCKET environment variable.
func NewWayfireProvider(socketPath string) *WayfireProvider {
	if socketPath == "" {
		socketPath = os.Getenv("WAYFIRE_SOCKET")
	}
	return &WayfireProvider{socketPath: socketPath, timeout: time.Second}
}

// Name returns the provider name.
func (p *WayfireProvider) Name() string { return "wayfire" }

// Connect verifies the IPC socket is reachable.
func (p *WayfireProvider) Connect() error {
	conn, err := p.dial()
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close is a no-op; connections are per-request.
func (p *WayfireProvider) Close() error { return nil }

func (p *WayfireProvider) dial() (net.Conn, error) {
	if p.socketPath == "" {
		return nil, fmt.Errorf("wayfire socket path not set")
	}
	conn, err := net.DialTimeout("unix", p.socketPath, p.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wayfire IPC: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(p.timeout))
	return conn, nil
}

// call sends one length-prefixed JSON request and decodes the reply into
// out. The wire format is a 4-byte little-endian length followed by the
// JSON payload, both ways.
func (p *WayfireProvider) call(method string, data any, out any) error {
	conn, err := p.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if data == nil {
		data = struct{}{}
	}
	msg, err := json.Marshal(map[string]any{"method": method, "data": data})
	if err != nil {
		return err
	}

	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(msg)))
	if _, err := conn.Write(append(header, msg...)); err != nil {
		return fmt.Errorf("wayfire IPC write failed: %w", err)
	}

	if _, err := io.ReadFull(conn, header); err != nil {
		return fmt.Errorf("wayfire IPC read failed: %w", err)
	}
	body := make([]byte, binary.LittleEndian.Uint32(header))
	if _, err := io.ReadFull(conn, body); err != nil {
		return fmt.Errorf("wayfire IPC read failed: %w", err)
	}

	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

// wayfireView is the subset of Wayfire's view description we consume.
type wayfireView struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	AppID     string `json:"app-id"`
	Mapped    bool   `json:"mapped"`
	Minimized bool   `json:"minimized"`
	Type      string `json:"type"`
	Layer     string `json:"layer"`
	Output    string `json:"output-name"`
	FocusTime int64  `json:"last-focus-timestamp"`
	Geometry  struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"width"`
		H int `json:"height"`
	} `json:"geometry"`
}

// Snapshot lists mapped, non-minimized toplevel views on the workspace
// layer, front to back by last focus time. The tool's own surface is
// skipped.
func (p *WayfireProvider) Snapshot() ([]Handle, error) {
	var views []wayfireView
	if err := p.call("window-rules/list-views", nil, &views); err != nil {
		clog := logger.WithComponent("wayfire")
		clog.Debug().Err(err).Msg("Snapshot unavailable")
		return nil, err
	}

	eligible := views[:0]
	for _, v := range views {
		if v.Mapped && !v.Minimized &&
			v.Type == "toplevel" && v.Layer == "workspace" &&
			v.AppID != "" && v.AppID != selfAppID &&
			v.Geometry.W > 0 && v.Geometry.H > 0 {
			eligible = append(eligible, v)
		}
	}

	// Most recently focused first approximates front-to-back stacking.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].FocusTime > eligible[j].FocusTime
	})

	handles := make([]Handle, 0, len(eligible))
	for z, v := range eligible {
		handles = append(handles, Handle{
			ID:    v.ID,
			AppID: v.AppID,
			Title: v.Title,
			Rect: geometry.Rect{
				X: v.Geometry.X, Y: v.Geometry.Y,
				W: v.Geometry.W, H: v.Geometry.H,
			},
			Output: v.Output,
			ZOrder: z,
		})
	}

	clog := logger.WithComponent("wayfire")
	clog.Debug().Int("windows", len(handles)).Msg("Snapshot taken")
	return handles, nil
}

// CursorPosition returns the current pointer position in global logical
// coordinates, or false if the compositor did not answer.
func (p *WayfireProvider) CursorPosition() (geometry.Point, bool) {
	var reply struct {
		Pos struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"position"`
	}
	if err := p.call("window-rules/get-cursor-position", nil, &reply); err != nil {
		clog := logger.WithComponent("wayfire")
		clog.Debug().Err(err).Msg("Cursor position unavailable")
		return geometry.Point{}, false
	}
	return geometry.Point{X: int(reply.Pos.X), Y: int(reply.Pos.Y)}, true
}

// HideCursor asks the compositor to hide the pointer while the overlay is
// up. Failure is logged and ignored.
func (p *WayfireProvider) HideCursor() {
	var state struct {
		Hidden bool `json:"hidden"`
	}
	if err := p.call("cursor-control/is-hidden", nil, &state); err == nil && state.Hidden {
		return
	}
	if err := p.call("cursor-control/hide", nil, nil); err != nil {
		clog := logger.WithComponent("wayfire")
		clog.Warn().Err(err).Msg("Could not hide cursor")
	}
}

// ShowCursor restores the pointer after the overlay closes.
func (p *WayfireProvider) ShowCursor() {
	if err := p.call("cursor-control/show", nil, nil); err != nil {
		clog := logger.WithComponent("wayfire")
		clog.Warn().Err(err).Msg("Could not show cursor")
	}
}
