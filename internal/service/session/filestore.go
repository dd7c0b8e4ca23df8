package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps session tokens in a small JSON file under the user
// config directory, the closest terminal analogue to browser local
// storage. All errors are swallowed: a machine without a writable config
// dir still chats, it just re-mints tokens next run.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store rooted at dir/session.json. When dir is
// empty the platform user config directory is used; if that is unavailable
// the store is nil and the caller falls back to memory.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(base, "charmefy")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil
	}
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	value, ok := values[key]
	return value, ok
}

// Set implements Store.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	values[key] = value
	return s.write(values)
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.read()
	delete(values, key)
	return s.write(values)
}

func (s *FileStore) read() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

func (s *FileStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
