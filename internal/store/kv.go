// Package store provides the durable key-value store behind the daemon's persisted state.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// KV is a durable key-value store holding raw encoded values.
// A missing key is reported with found == false and a nil error.
type KV interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
}

var validKey = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// FileKV stores each key as a JSON file inside a directory
type FileKV struct {
	mu  sync.Mutex
	dir string
}

// NewFileKV creates a file-backed store rooted at dir
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get reads the value stored under key
func (f *FileKV) Get(key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes the value under key, replacing any previous value
func (f *FileKV) Set(key string, value []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a torn value
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Dir returns the directory holding the store files
func (f *FileKV) Dir() string {
	return f.dir
}

// MemoryKV is an in-process store, used when persistence is disabled and in tests
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get reads the value stored under key
func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set writes the value under key
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}
