package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotFound is returned by Backend.Get and Backend.Delete for a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded is returned when a write would exceed the backend's byte quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Backend stores named records, each read and written whole.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FileBackend keeps each record in <Dir>/<key>.json.
type FileBackend struct {
	Dir string

	// Quota caps the size of a single record in bytes. Zero means unlimited.
	Quota int

	mu sync.Mutex
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a FileBackend rooted at dir.
func NewFileBackend(dir string, quota int) *FileBackend {
	return &FileBackend{Dir: dir, Quota: quota}
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.Dir, filepath.Base(key)+".json")
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put replaces the record atomically via a temp file and rename.
func (b *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.Quota > 0 && len(value) > b.Quota {
		return fmt.Errorf("%w: %d bytes (quota %d)", ErrQuotaExceeded, len(value), b.Quota)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(b.Dir, "."+filepath.Base(key)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// MemoryBackend keeps records in memory. Nothing survives the process.
// The zero value is ready to use.
type MemoryBackend struct {
	Quota int

	records map[string][]byte
	mu      sync.RWMutex
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *MemoryBackend) Put(ctx context.Context, key string, value []byte) error {
	if b.Quota > 0 && len(value) > b.Quota {
		return fmt.Errorf("%w: %d bytes (quota %d)", ErrQuotaExceeded, len(value), b.Quota)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.records == nil {
		b.records = make(map[string][]byte)
	}
	b.records[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[key]; !ok {
		return ErrNotFound
	}
	delete(b.records, key)
	return nil
}
