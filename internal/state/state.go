// Package state persists the CLI's own small state — the list of recently
// touched repositories — under the user's config directory, with crash-safe
// atomic writes and file-level locking so concurrent repolock invocations
// don't clobber each other.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/repolock/repolock/internal/util"
)

// CurrentVersion is written into the state file for future migrations.
const CurrentVersion = 1

// MaxRecent caps how many repositories the recent list remembers.
const MaxRecent = 20

// RecentRepo is one remembered repository.
type RecentRepo struct {
	Path     string    `json:"path"`
	LastUsed time.Time `json:"last_used"`
	LastMode string    `json:"last_mode"` // "shared" or "exclusive"
}

// Recent is the persisted state document.
type Recent struct {
	Version      int          `json:"version"`
	Repositories []RecentRepo `json:"repositories"`
}

// Manager handles recent-repository state persistence with file locking.
type Manager struct {
	dir string
}

// NewManager creates a manager storing state under dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// DefaultManager stores state next to the settings file.
func DefaultManager() (*Manager, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return NewManager(filepath.Join(xdg, "repolock")), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locating state dir: %w", err)
	}
	return NewManager(filepath.Join(home, ".config", "repolock")), nil
}

func (m *Manager) statePath() string {
	return filepath.Join(m.dir, "recent.json")
}

func (m *Manager) lockPath() string {
	return filepath.Join(m.dir, "recent.lock")
}

// lock acquires an exclusive file lock for state operations.
// Caller must defer unlock().
func (m *Manager) lock() (func(), error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	fl := flock.New(m.lockPath())
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring state lock: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// Load reads the recent list. A missing file is an empty list (first run).
func (m *Manager) Load() (*Recent, error) {
	data, err := os.ReadFile(m.statePath())
	if os.IsNotExist(err) {
		return &Recent{Version: CurrentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent state: %w", err)
	}
	var r Recent
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recent state: %w", err)
	}
	return &r, nil
}

// Touch records that the repository at path was just locked in the given
// mode, moving it to the front of the list and trimming the tail.
func (m *Manager) Touch(path, mode string) error {
	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	r, err := m.Load()
	if err != nil {
		return err
	}

	updated := []RecentRepo{{Path: path, LastUsed: time.Now(), LastMode: mode}}
	for _, e := range r.Repositories {
		if e.Path != path {
			updated = append(updated, e)
		}
	}
	if len(updated) > MaxRecent {
		updated = updated[:MaxRecent]
	}
	r.Repositories = updated
	r.Version = CurrentVersion

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recent state: %w", err)
	}
	return util.WriteFileAtomic(m.statePath(), data, 0644)
}
