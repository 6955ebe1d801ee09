package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clawd-xsl/android-remote/internal/platform"
)

// Store persists the single capture grant record across restarts.
type Store interface {
	// Load returns the persisted grant. ok is false when none is stored.
	Load() (g platform.Grant, ok bool, err error)
	Save(g platform.Grant) error
	Clear() error
}

// GrantFileName is the record's file name inside the state directory.
const GrantFileName = "projection.json"

// FileStore keeps the grant as a JSON file, replaced atomically on save.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore rooted at dir. The directory is
// created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, GrantFileName)}
}

// Path returns the record's location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (platform.Grant, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return platform.Grant{}, false, nil
	}
	if err != nil {
		return platform.Grant{}, false, fmt.Errorf("read grant: %w", err)
	}
	var g platform.Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return platform.Grant{}, false, fmt.Errorf("parse grant %s: %w", s.path, err)
	}
	if !g.Valid() {
		return platform.Grant{}, false, nil
	}
	return g, true, nil
}

func (s *FileStore) Save(g platform.Grant) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), GrantFileName+".*")
	if err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save grant: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save grant: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear grant: %w", err)
	}
	return nil
}
