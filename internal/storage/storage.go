package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/hquan/babytrack/internal/util"
)

// Well-known storage keys.
const (
	KeyEntries       = "entries"
	KeyNextFeedingAt = "next_feeding_at"
	KeyProfile       = "profile"
)

// Storage is a durable string-valued key-value store. A missing or unreadable
// key is reported as absent, never as an error; readers fall back to an
// empty default.
type Storage interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	Delete(key string) error
}

// FileStorage persists each key as a file in a base directory, with a
// write-through memory layer.
type FileStorage struct {
	baseDir string
	mu      sync.RWMutex
	memory  map[string]string
}

// NewFileStorage creates the base directory if needed and returns a store.
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &FileStorage{
		baseDir: baseDir,
		memory:  make(map[string]string),
	}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.baseDir, key+".dat")
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	if value, ok := s.memory[key]; ok {
		s.mu.RUnlock()
		return value, true
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			util.LogWarnf("Failed to read storage key %s: %v", key, err)
		}
		return "", false
	}

	value := string(data)
	s.mu.Lock()
	s.memory[key] = value
	s.mu.Unlock()
	return value, true
}

func (s *FileStorage) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file then rename so readers never see partial writes
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	s.memory[key] = value
	return nil
}

func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memory, key)
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Invalidate drops the memory layer for a key so the next Get rereads the
// backing file. Used when the file changed on disk behind our back.
func (s *FileStorage) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memory, key)
}

// BaseDir returns the directory backing this store.
func (s *FileStorage) BaseDir() string {
	return s.baseDir
}

// MemoryStorage is an in-memory Storage for tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStorage) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
