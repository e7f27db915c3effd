// Package prefs persists user preferences between runs.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the preferences file inside the config directory.
const FileName = "prefs.yaml"

// Prefs is the persisted preference set.
type Prefs struct {
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`
}

// Store loads and saves preferences.
type Store interface {
	Load() (Prefs, error)
	Save(Prefs) error
}

// FileStore keeps preferences in a YAML file.
type FileStore struct {
	Path string
}

// DefaultPath is prefs.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "kliff", FileName), nil
}

// Load returns empty preferences when the file does not exist yet.
func (s FileStore) Load() (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("decode prefs %s: %w", s.Path, err)
	}
	return p, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers see either the old or the new file.
func (s FileStore) Save(p Prefs) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	prefs Prefs
}

// Load implements Store.
func (m *MemoryStore) Load() (Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

// Save implements Store.
func (m *MemoryStore) Save(p Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	return nil
}
