package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrNotFound    = errors.New("storage: file not found")
	ErrUnknownDisk = errors.New("storage: unknown disk")
)

// Disk is a named storage backend. Paths are slash separated and relative to
// the disk root. Copy and Move keep the destination on the same disk.
type Disk interface {
	Put(ctx context.Context, path string, r io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, error)
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, path string) error
}

// Manager resolves disks by name.
type Manager struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

func NewManager() *Manager {
	return &Manager{disks: make(map[string]Disk)}
}

func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disks[name] = d
}

func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisk, name)
	}
	return d, nil
}

func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.disks))
	for name := range m.disks {
		names = append(names, name)
	}
	return names
}

// Config describes the disks available to the process.
type Config struct {
	LocalRoot string
	S3        S3Config
}

// Open builds a Manager with the "local" disk and, when a bucket is
// configured, the "s3" disk.
func Open(ctx context.Context, cfg Config) (*Manager, error) {
	m := NewManager()

	local, err := NewLocalDisk(cfg.LocalRoot)
	if err != nil {
		return nil, fmt.Errorf("local disk: %w", err)
	}
	m.Register("local", local)

	if cfg.S3.Bucket != "" {
		client, err := NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 disk: %w", err)
		}
		m.Register("s3", NewS3Disk(client, cfg.S3.Bucket, cfg.S3.Prefix))
	}

	return m, nil
}
