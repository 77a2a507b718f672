package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// KV is a flat key-value space holding one JSON document per key, the
// shape of browser local storage.
type KV interface {
	// Get returns nil, nil for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// =============================================================================
// MEMORY KV
// =============================================================================

type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// =============================================================================
// FILE KV - One file per key in a directory
// =============================================================================

type FileKV struct {
	dir string
}

// NewFileKV uses dir, creating it if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create data dir %s", dir)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return b, nil
}

// Set replaces the value through a temp file and a rename, so a crash never
// leaves a half-written list behind.
func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	tmp := filepath.Join(f.dir, "."+key+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", key)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to replace %s", key)
	}
	return nil
}
