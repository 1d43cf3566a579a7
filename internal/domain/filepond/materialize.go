package filepond

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"filepond/internal/storage"
)

// Result describes where a staged upload ended up.
type Result struct {
	ID        string `json:"id"`
	FileURL   string `json:"file_url"`
	Dirname   string `json:"dirname"`
	Basename  string `json:"basename"`
	Extension string `json:"extension"`
	Filename  string `json:"filename"`
}

// namer builds {unix seconds}{token}[-{index}].{ext}. Two calls within the
// same second differ only by token.
type namer struct {
	now   func() time.Time
	token func() string
}

func newNamer() *namer {
	return &namer{now: time.Now, token: uniqueToken}
}

func uniqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

func (n *namer) name(ext string, index int) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(n.now().Unix(), 10))
	b.WriteString(n.token())
	if index > 0 {
		b.WriteString("-")
		b.WriteString(strconv.Itoa(index))
	}
	if ext != "" {
		b.WriteString(".")
		b.WriteString(ext)
	}
	return b.String()
}

// CopyTo copies every bound upload into dest on the upload's own disk. The
// staged files stay in place.
func (f *Field) CopyTo(ctx context.Context, dest string) ([]Result, error) {
	results, err := f.transfer(ctx, dest, storage.Disk.Copy)
	f.fp.metrics.Observe("copy", err)
	return results, err
}

// MoveTo relocates every bound upload into dest. It is not atomic across a
// multi-valued field: results for the files moved before a failure are
// returned with the error.
func (f *Field) MoveTo(ctx context.Context, dest string) ([]Result, error) {
	results, err := f.transfer(ctx, dest, storage.Disk.Move)
	f.fp.metrics.Observe("move", err)
	return results, err
}

type transferFunc func(d storage.Disk, ctx context.Context, src, dst string) error

func (f *Field) transfer(ctx context.Context, dest string, op transferFunc) ([]Result, error) {
	if f.IsEmpty() {
		return nil, nil
	}

	dest = strings.TrimSuffix(dest, "/")
	results := make([]Result, 0, len(f.uploads))
	for i, u := range f.uploads {
		disk, err := f.fp.disk(u.Disk)
		if err != nil {
			return results, err
		}

		index := 0
		if f.IsMultiple() {
			index = i + 1
		}
		basename := f.fp.namer.name(u.Extension, index)
		to := path.Join(dest, basename)

		if err := op(disk, ctx, u.Filepath, to); err != nil {
			return results, fmt.Errorf("%s -> %s: %w", u.Filepath, to, err)
		}
		results = append(results, newResult(u.ID, to))
	}
	return results, nil
}

func newResult(id, to string) Result {
	dir, base := path.Split(to)
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		dir = "."
	}
	ext := strings.TrimPrefix(path.Ext(base), ".")
	return Result{
		ID:        id,
		FileURL:   dir + "/" + base,
		Dirname:   dir,
		Basename:  base,
		Extension: ext,
		Filename:  strings.TrimSuffix(base, path.Ext(base)),
	}
}
