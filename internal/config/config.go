// Package config loads and persists the tool configuration. The file lives
// at ~/.config/shotframe/config.yaml and is created with defaults on first
// run; SHOTFRAME_* environment variables override individual fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shotframe/shotframe/internal/logger"
)

// Config is the on-disk configuration.
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Interaction InteractionConfig `yaml:"interaction"`
	Capture     CaptureConfig     `yaml:"capture"`
	LogLevel    string            `yaml:"log_level"`
}

// OutputConfig controls where captures go.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Format    string `yaml:"format"`
	Quality   int    `yaml:"quality"`
	Clipboard bool   `yaml:"clipboard"`
	Notify    bool   `yaml:"notify"`
	Sound     bool   `yaml:"sound"`
}

// InteractionConfig tunes the overlay session.
type InteractionConfig struct {
	JitterThreshold int  `yaml:"jitter_threshold"`
	MinArea         int  `yaml:"min_area"`
	NudgeStep       int  `yaml:"nudge_step"`
	MagnifierZoom   int  `yaml:"magnifier_zoom"`
	ShowHints       bool `yaml:"show_hints"`
}

// CaptureConfig selects the capture backend.
type CaptureConfig struct {
	// Binary is the capture helper executable; resolved on PATH when not
	// absolute. Empty falls back to the built-in screen grabber.
	Binary         string `yaml:"binary"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Default returns the shipped defaults. The output directory follows
// XDG_PICTURES_DIR conventions loosely: ~/Pictures when it exists, the
// home directory otherwise.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, "Pictures")
	if _, err := os.Stat(dir); err != nil {
		dir = home
	}

	return &Config{
		Output: OutputConfig{
			Dir:       dir,
			Format:    "png",
			Quality:   90,
			Clipboard: true,
			Notify:    true,
			Sound:     true,
		},
		Interaction: InteractionConfig{
			JitterThreshold: 5,
			MinArea:         25,
			NudgeStep:       1,
			MagnifierZoom:   24,
			ShowHints:       true,
		},
		Capture: CaptureConfig{
			Binary:         "wayland-capture",
			TimeoutSeconds: 10,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns ~/.config/shotframe/config.yaml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shotframe", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shotframe", "config.yaml")
}

// Manager owns the configuration lifecycle: load, env overrides, save.
type Manager struct {
	mu     sync.RWMutex
	path   string
	config *Config
}

// NewManager creates a manager for the given path; empty means DefaultPath.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{path: path, config: Default()}
}

// Load reads the config file, creating it with defaults when missing, then
// applies environment overrides.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logger.WithComponent("config")

	data, err := os.ReadFile(m.path)
	switch {
	case os.IsNotExist(err):
		m.config = Default()
		if serr := m.saveLocked(); serr != nil {
			log.Warn().Err(serr).Str("path", m.path).Msg("could not write default config")
		} else {
			log.Info().Str("path", m.path).Msg("created default config")
		}
	case err != nil:
		return fmt.Errorf("reading config: %w", err)
	default:
		cfg := Default()
		if uerr := yaml.Unmarshal(data, cfg); uerr != nil {
			return fmt.Errorf("parsing %s: %w", m.path, uerr)
		}
		m.config = cfg
	}

	m.applyEnv()
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// Update replaces the configuration and persists it.
func (m *Manager) Update(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	return m.saveLocked()
}

// Path returns the config file location.
func (m *Manager) Path() string { return m.path }

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// applyEnv folds SHOTFRAME_* variables over the loaded file. Only the
// settings a wrapping script plausibly varies per invocation are exposed.
func (m *Manager) applyEnv() {
	if v := os.Getenv("SHOTFRAME_OUTPUT_DIR"); v != "" {
		m.config.Output.Dir = v
	}
	if v := os.Getenv("SHOTFRAME_FORMAT"); v != "" {
		m.config.Output.Format = v
	}
	if v := os.Getenv("SHOTFRAME_QUALITY"); v != "" {
		if q, err := strconv.Atoi(v); err == nil {
			m.config.Output.Quality = q
		}
	}
	if v := os.Getenv("SHOTFRAME_CAPTURE_BINARY"); v != "" {
		m.config.Capture.Binary = v
	}
	if v := os.Getenv("SHOTFRAME_LOG_LEVEL"); v != "" {
		m.config.LogLevel = v
	}
}
