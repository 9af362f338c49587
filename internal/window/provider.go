package window

// Provider supplies the once-per-session window snapshot. Implementations
// talk to a specific display server (Wayfire IPC, X11); the session treats
// the provider as optional and degrades to an empty index when unavailable.
type Provider interface {
	// Connect establishes the connection to the display server.
	Connect() error

	// Close releases the connection.
	Close() error

	// Snapshot returns the current toplevel windows, front to back.
	Snapshot() ([]Handle, error)

	// Name returns the provider name (e.g., "wayfire", "x11").
	Name() string
}
