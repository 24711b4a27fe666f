package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vectorlog/internal/codec"
	"vectorlog/internal/vlog"
)

// ErrNotFound is returned when no log is stored under a name.
var ErrNotFound = errors.New("log not found")

// Store defines the interface for log storage.
type Store interface {
	// Load retrieves a log by name. Returns ErrNotFound if absent.
	Load(name string) (*vlog.Log, error)
	// Save stores the current entries of a log under a name, replacing
	// any previous version.
	Save(name string, l *vlog.Log) error
}

// InMemoryStore is an in-memory implementation of Store.
// It's thread-safe.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string][]byte),
	}
}

// Load retrieves a log by name.
func (s *InMemoryStore) Load(name string) (*vlog.Log, error) {
	s.mu.RLock()
	raw, exists := s.data[name]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return decodeLog(raw)
}

// Save stores a log under a name.
func (s *InMemoryStore) Save(name string, l *vlog.Log) error {
	raw, err := codec.EncodeLog(l.Entries())
	if err != nil {
		return fmt.Errorf("failed to encode log %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = raw
	return nil
}

// FileStore keeps each log as <name>.json under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing the named log.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads and verifies the named log.
func (s *FileStore) Load(name string) (*vlog.Log, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log %s: %w", name, err)
	}
	return decodeLog(raw)
}

// Save writes the log to a temporary file and renames it into place, so
// readers never observe a partial write.
func (s *FileStore) Save(name string, l *vlog.Log) error {
	if err := checkName(name); err != nil {
		return err
	}
	raw, err := codec.EncodeLog(l.Entries())
	if err != nil {
		return fmt.Errorf("failed to encode log %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write log %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write log %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("failed to replace log %s: %w", name, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid log name %q", name)
	}
	return nil
}

func decodeLog(raw []byte) (*vlog.Log, error) {
	entries, err := codec.DecodeLog(raw)
	if err != nil {
		return nil, err
	}
	return vlog.FromEntries(entries)
}
