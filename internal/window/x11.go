package window

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/logger"
)

// X11Provider implements Provider against an X server. It is the variant
// used under XWayland or plain X11 sessions where Wayfire IPC is absent.
type X11Provider struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewX11Provider creates an unconnected X11 provider.
func NewX11Provider() *X11Provider {
	return &X11Provider{}
}

// Name returns the provider name.
func (p *X11Provider) Name() string { return "x11" }

// Connect establishes the X server connection.
func (p *X11Provider) Connect() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	p.conn = conn
	p.root = xproto.Setup(conn).DefaultScreen(conn).Root
	return nil
}

// Close closes the X server connection.
func (p *X11Provider) Close() error {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return nil
}

// Snapshot lists client windows using EWMH _NET_CLIENT_LIST_STACKING, which
// is ordered bottom to top, falling back to QueryTree when the window
// manager does not maintain it.
func (p *X11Provider) Snapshot() ([]Handle, error) {
	log := logger.WithComponent("x11")
	if p.conn == nil {
		return nil, fmt.Errorf("x11 provider not connected")
	}

	ids, stacked, err := p.clientWindows()
	if err != nil {
		return nil, err
	}

	handles := make([]Handle, 0, len(ids))
	for i, id := range ids {
		h, err := p.handleFor(id)
		if err != nil {
			log.Debug().Uint32("window", uint32(id)).Err(err).Msg("Skipping window")
			continue
		}
		if h.Title == "" && h.AppID == "" {
			continue
		}
		if stacked {
			// Stacking list is bottom-to-top; invert so 0 = frontmost.
			h.ZOrder = len(ids) - 1 - i
		} else {
			h.ZOrder = -1
		}
		handles = append(handles, h)
	}

	log.Debug().Int("windows", len(handles)).Bool("stacking", stacked).Msg("Snapshot taken")
	return handles, nil
}

// clientWindows returns window IDs and whether they carry stacking order.
func (p *X11Provider) clientWindows() ([]xproto.Window, bool, error) {
	if ids, err := p.windowListProperty("_NET_CLIENT_LIST_STACKING"); err == nil && len(ids) > 0 {
		return ids, true, nil
	}
	if ids, err := p.windowListProperty("_NET_CLIENT_LIST"); err == nil && len(ids) > 0 {
		return ids, false, nil
	}

	tree, err := xproto.QueryTree(p.conn, p.root).Reply()
	if err != nil {
		return nil, false, fmt.Errorf("failed to query window tree: %w", err)
	}
	return tree.Children, false, nil
}

func (p *X11Provider) windowListProperty(name string) ([]xproto.Window, error) {
	atom, err := p.atom(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(
		p.conn, false, p.root, atom, xproto.AtomWindow, 0, (1<<32)-1,
	).Reply()
	if err != nil {
		return nil, err
	}

	ids := make([]xproto.Window, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		ids = append(ids, xproto.Window(uint32(reply.Value[i])|
			uint32(reply.Value[i+1])<<8|
			uint32(reply.Value[i+2])<<16|
			uint32(reply.Value[i+3])<<24))
	}
	return ids, nil
}

func (p *X11Provider) handleFor(win xproto.Window) (Handle, error) {
	geom, err := xproto.GetGeometry(p.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return Handle{}, err
	}

	// Child geometry is relative to its parent; translate to root space.
	pos, err := xproto.TranslateCoordinates(p.conn, win, p.root, 0, 0).Reply()
	if err != nil {
		return Handle{}, err
	}

	h := Handle{
		ID: uint32(win),
		Rect: geometry.Rect{
			X: int(pos.DstX), Y: int(pos.DstY),
			W: int(geom.Width), H: int(geom.Height),
		},
	}

	if title, err := p.stringProperty(win, "_NET_WM_NAME"); err == nil && title != "" {
		h.Title = title
	} else if title, err := p.stringProperty(win, "WM_NAME"); err == nil {
		h.Title = title
	}

	// WM_CLASS is instance\0class\0; the instance name doubles as app-id.
	if class, err := p.stringProperty(win, "WM_CLASS"); err == nil {
		for i := 0; i < len(class); i++ {
			if class[i] == 0 {
				class = class[:i]
				break
			}
		}
		h.AppID = class
	}

	return h, nil
}

func (p *X11Provider) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(p.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func (p *X11Provider) stringProperty(win xproto.Window, name string) (string, error) {
	atom, err := p.atom(name)
	if err != nil {
		return "", err
	}
	reply, err := xproto.GetProperty(
		p.conn, false, win, atom, xproto.GetPropertyTypeAny, 0, (1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property %s", name)
	}
	return string(reply.Value), nil
}
