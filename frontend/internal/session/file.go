package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/portal-dev/portal/shared/domain"
)

// FileStore keeps the session of the terminal client in a JSON file readable only by its owner.
type FileStore struct {
	Path string
}

// DefaultFilePath is <user config dir>/portal/session.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("can't locate config dir: %w", err)
	}
	return filepath.Join(dir, "portal", "session.json"), nil
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Load() (domain.Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("can't read session file: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Session{}, fmt.Errorf("session file is corrupted: %w", err)
	}
	if !s.Valid() {
		return domain.Session{}, ErrNoSession
	}
	return s, nil
}

func (f *FileStore) Save(s domain.Session) error {
	if !s.Valid() {
		return errors.New("session needs both token and email")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("can't create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("can't write session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("can't remove session file: %w", err)
	}
	return nil
}
