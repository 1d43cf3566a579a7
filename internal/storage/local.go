package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalDisk stores files on an afero filesystem rooted at a directory.
type LocalDisk struct {
	fs afero.Fs
}

// NewLocalDisk creates a disk rooted at dir on the OS filesystem.
func NewLocalDisk(dir string) (*LocalDisk, error) {
	if dir == "" {
		dir = "./storage"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalDisk{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}, nil
}

// NewLocalDiskFs wraps an existing filesystem, e.g. afero.NewMemMapFs in tests.
func NewLocalDiskFs(fs afero.Fs) *LocalDisk {
	return &LocalDisk{fs: fs}
}

func (d *LocalDisk) Put(_ context.Context, p string, r io.Reader) (int64, error) {
	if err := d.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir %s: %w", path.Dir(p), err)
	}
	f, err := d.fs.Create(p)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", p, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = d.fs.Remove(p)
		return 0, fmt.Errorf("write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		_ = d.fs.Remove(p)
		return 0, fmt.Errorf("close %s: %w", p, err)
	}
	return n, nil
}

func (d *LocalDisk) Open(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := d.fs.Open(p)
	if err != nil {
		return nil, d.wrap(p, err)
	}
	return f, nil
}

func (d *LocalDisk) Exists(_ context.Context, p string) (bool, error) {
	return afero.Exists(d.fs, p)
}

func (d *LocalDisk) Size(_ context.Context, p string) (int64, error) {
	info, err := d.fs.Stat(p)
	if err != nil {
		return 0, d.wrap(p, err)
	}
	return info.Size(), nil
}

func (d *LocalDisk) Copy(ctx context.Context, src, dst string) error {
	in, err := d.fs.Open(src)
	if err != nil {
		return d.wrap(src, err)
	}
	defer in.Close()

	if _, err := d.Put(ctx, dst, in); err != nil {
		return err
	}
	return nil
}

func (d *LocalDisk) Move(ctx context.Context, src, dst string) error {
	if _, err := d.fs.Stat(src); err != nil {
		return d.wrap(src, err)
	}
	if err := d.fs.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path.Dir(dst), err)
	}
	if err := d.fs.Rename(src, dst); err == nil {
		return nil
	}

	// rename fails across devices, fall back to copy + remove
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := d.fs.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

func (d *LocalDisk) Delete(_ context.Context, p string) error {
	if _, err := d.fs.Stat(p); err != nil {
		return d.wrap(p, err)
	}
	if err := d.fs.Remove(p); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

func (d *LocalDisk) wrap(p string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return fmt.Errorf("%s: %w", p, err)
}
