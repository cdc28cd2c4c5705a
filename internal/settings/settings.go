// Package settings loads the repolock tool settings file. These are
// operator preferences for the CLI — never repository state, which lives in
// the repository's own config and lock files.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values can be written as "90m" or
// "36h" strings.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Settings is the decoded settings file.
type Settings struct {
	// DefaultRepository is used when a command is given no repository
	// argument. Supports ~/ expansion.
	DefaultRepository string `toml:"default_repository"`

	// StaleMaxAge is the age past which `repolock break` reports a guard
	// directory as breakable. Zero disables the age rule, leaving only the
	// same-host liveness probe.
	StaleMaxAge Duration `toml:"stale_max_age"`

	// Color controls styled output: "auto" (default), "always" or "never".
	Color string `toml:"color"`
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{Color: "auto"}
}

// Path returns the settings file location, honoring XDG_CONFIG_HOME.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "repolock", "settings.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "repolock", "settings.toml")
}

// Load reads the settings file, returning defaults when it does not exist.
func Load() (*Settings, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	switch s.Color {
	case "", "auto", "always", "never":
	default:
		return nil, fmt.Errorf("settings %s: color must be auto, always or never, got %q", path, s.Color)
	}
	if s.Color == "" {
		s.Color = "auto"
	}
	return s, nil
}
