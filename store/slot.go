package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrSlotEmpty is returned by Slot.Read when nothing has been stored yet.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot holds the single serialized history blob.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// MemorySlot keeps the blob in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemorySlot() *MemorySlot { return &MemorySlot{} }

// NewMemorySlotWith returns a slot pre-filled with data, as if written earlier.
func NewMemorySlotWith(data string) *MemorySlot {
	return &MemorySlot{data: []byte(data), set: true}
}

func (m *MemorySlot) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemorySlot) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data[:0], data...)
	m.set = true
	return nil
}

// FileSlot stores the blob in a single JSON file. Writes go through a temp
// file and a rename so readers never see a half-written document.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: filepath.Clean(path)}
}

func (f *FileSlot) Path() string { return f.path }

func (f *FileSlot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	return data, nil
}

func (f *FileSlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
