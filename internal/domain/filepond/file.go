package filepond

import (
	"context"
	"fmt"
	"io"

	"filepond/internal/storage"
)

// File is a read view over a staged upload.
type File struct {
	upload *Upload
	disk   storage.Disk
}

func (f *File) ID() string           { return f.upload.ID }
func (f *File) Path() string         { return f.upload.Filepath }
func (f *File) Disk() string         { return f.upload.Disk }
func (f *File) OriginalName() string { return f.upload.Filename }
func (f *File) Extension() string    { return f.upload.Extension }
func (f *File) Size() int64          { return f.upload.Size }
func (f *File) MimeType() string     { return f.upload.Mimetypes }

// Open streams the staged content. The caller closes the reader.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	rc, err := f.disk.Open(ctx, f.upload.Filepath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.upload.ID, err)
	}
	return rc, nil
}

// GetFile returns one File per bound upload in submission order, or nil when
// the field is unbound.
func (f *Field) GetFile() ([]*File, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	files := make([]*File, 0, len(f.uploads))
	for _, u := range f.uploads {
		disk, err := f.fp.disk(u.Disk)
		if err != nil {
			return nil, err
		}
		files = append(files, &File{upload: u, disk: disk})
	}
	return files, nil
}
