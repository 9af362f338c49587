// Package window provides the session's window-geometry snapshot: a
// read-only index of toplevel windows used for hit-testing during
// interactive selection and for app-id lookups in non-interactive mode.
package window

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shotframe/shotframe/internal/geometry"
)

var (
	// ErrWindowNotFound is returned when no window matches a lookup.
	ErrWindowNotFound = errors.New("window not found")
	// ErrAmbiguousMatch is returned when more than one window matches an
	// app-id and no disambiguation was requested.
	ErrAmbiguousMatch = errors.New("ambiguous window match")
)

// Handle is a read-only snapshot of one toplevel window taken at session
// start. Geometry is in global logical coordinates. ZOrder is the stacking
// position (0 = frontmost); -1 when the provider cannot report stacking.
type Handle struct {
	ID     uint32        `json:"id"`
	AppID  string        `json:"app_id"`
	Title  string        `json:"title"`
	Rect   geometry.Rect `json:"geometry"`
	Output string        `json:"output"`
	ZOrder int           `json:"z_order"`
}

// Index is an immutable hit-test structure built once per session from a
// provider snapshot. A nil or empty index is valid and answers every hit
// test with no window.
type Index struct {
	handles []Handle
}

// NewIndex builds an index over the given snapshot. Windows with empty
// geometry are dropped.
func NewIndex(handles []Handle) *Index {
	kept := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if !h.Rect.Empty() {
			kept = append(kept, h)
		}
	}
	return &Index{handles: kept}
}

// Handles returns the indexed windows, front to back where stacking is
// known.
func (ix *Index) Handles() []Handle {
	if ix == nil {
		return nil
	}
	return ix.handles
}

// HitTest returns the topmost window containing the given logical point.
// When stacking order is unknown the smallest-area window wins, which
// approximates topmost for overlapping windows. The second return is false
// when no window contains the point.
func (ix *Index) HitTest(p geometry.Point) (Handle, bool) {
	if ix == nil {
		return Handle{}, false
	}

	var best Handle
	found := false
	for _, h := range ix.handles {
		if !p.In(h.Rect) {
			continue
		}
		if !found || hitBefore(h, best) {
			best = h
			found = true
		}
	}
	return best, found
}

// hitBefore reports whether a should win a hit test over b. Known stacking
// order dominates; smallest area breaks ties and covers providers without
// stacking data.
func hitBefore(a, b Handle) bool {
	if a.ZOrder >= 0 && b.ZOrder >= 0 && a.ZOrder != b.ZOrder {
		return a.ZOrder < b.ZOrder
	}
	return a.Rect.Area() < b.Rect.Area()
}

// LookupByAppID resolves a window by its app-id for non-interactive
// capture. With first=true, multiple matches resolve to the frontmost by
// stacking order (best-effort); otherwise they fail with ErrAmbiguousMatch.
func (ix *Index) LookupByAppID(appID string, first bool) (Handle, error) {
	if ix == nil {
		return Handle{}, fmt.Errorf("%w: %q", ErrWindowNotFound, appID)
	}

	var matches []Handle
	for _, h := range ix.handles {
		if h.AppID == appID {
			matches = append(matches, h)
		}
	}

	switch {
	case len(matches) == 0:
		return Handle{}, fmt.Errorf("%w: %q", ErrWindowNotFound, appID)
	case len(matches) == 1:
		return matches[0], nil
	case first:
		sort.SliceStable(matches, func(i, j int) bool {
			return hitBefore(matches[i], matches[j])
		})
		return matches[0], nil
	default:
		return Handle{}, fmt.Errorf("%w: %d windows with app-id %q", ErrAmbiguousMatch, len(matches), appID)
	}
}

// FrontWindowsOverlapping returns windows stacked in front of h that
// overlap its geometry. The overlay uses this to keep front windows
// un-highlighted when hovering a partially covered window.
func (ix *Index) FrontWindowsOverlapping(h Handle) []Handle {
	if ix == nil || h.ZOrder < 0 {
		return nil
	}
	var front []Handle
	for _, other := range ix.handles {
		if other.ID == h.ID || other.ZOrder < 0 || other.ZOrder >= h.ZOrder {
			continue
		}
		if other.Rect.Overlaps(h.Rect) {
			front = append(front, other)
		}
	}
	return front
}
