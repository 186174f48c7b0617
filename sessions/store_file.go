package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// sessionFileName is the stable namespaced key the session persists under.
const sessionFileName = "embedkit.session.json"

// FileStore persists the session as a JSON file, for CLI and desktop hosts
// that need the session to survive restarts.
type FileStore struct {
	StoragePath string
}

func NewFileStore(storagePath string) *FileStore {
	return &FileStore{StoragePath: storagePath}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) sessionPath() string {
	return filepath.Join(s.StoragePath, sessionFileName)
}

func (s *FileStore) Save(session *Session) error {
	if err := os.MkdirAll(s.StoragePath, 0700); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return writeAtomicFile(s.sessionPath(), data)
}

func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.sessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// writeAtomicFile writes data to a file atomically by writing to a temp file first
func writeAtomicFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
