package filepond

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/validator"
)

// Service handles the FilePond server protocol: process stores a staged
// upload and hands back a server id, revert discards it, restore streams it.
type Service struct {
	fp    *Filepond
	now   func() time.Time
	newID func() string
}

func NewService(fp *Filepond) *Service {
	return &Service{fp: fp, now: time.Now, newID: uuid.NewString}
}

// Process validates the file against the configured intake rules, stores it
// under the temp dir and returns the server id for the new record.
func (s *Service) Process(ctx context.Context, userID int64, field string, fh *multipart.FileHeader) (string, error) {
	serverID, err := s.process(ctx, userID, field, fh)
	s.fp.metrics.Observe("process", err)
	return serverID, err
}

func (s *Service) process(ctx context.Context, userID int64, field string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNoFile
	}
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect mimetype: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	cfg := s.fp.cfg
	ext := extensionOf(fh.Filename)
	if ext == "" {
		ext = strings.TrimPrefix(mtype.Extension(), ".")
	}
	mime, _, _ := strings.Cut(mtype.String(), ";")

	id := s.newID()
	now := s.now()
	upload := &Upload{
		ID:        id,
		Filepath:  path.Join(cfg.TempDir, storedName(id, ext)),
		Filename:  path.Base(strings.ReplaceAll(fh.Filename, "\\", "/")),
		Extension: ext,
		Mimetypes: strings.TrimSpace(mime),
		Size:      fh.Size,
		Disk:      cfg.Disk,
		CreatedBy: userID,
		CreatedAt: now,
	}

	if rules := validator.ParseRules(cfg.ValidationRules); len(rules) > 0 {
		values := map[string]any{field: validator.File(&File{upload: upload})}
		if err := s.fp.validator.Validate(values, validator.Rules(field, rules...), nil, nil); err != nil {
			return "", err
		}
	}

	disk, err := s.fp.disk(cfg.Disk)
	if err != nil {
		return "", err
	}
	written, err := disk.Put(ctx, upload.Filepath, file)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	upload.Size = written

	if err := s.fp.repo.Create(ctx, upload); err != nil {
		if rmErr := disk.Delete(ctx, upload.Filepath); rmErr != nil {
			logging.Warn("failed to remove orphaned upload", "path", upload.Filepath, "err", rmErr)
		}
		return "", fmt.Errorf("failed to save upload record: %w", err)
	}

	serverID, err := s.fp.codec.Encode(upload.ID)
	if err != nil {
		return "", fmt.Errorf("failed to encode server id: %w", err)
	}

	logging.Debug("upload staged", "id", upload.ID, "field", field, "size", upload.Size, "mime", upload.Mimetypes)
	return serverID, nil
}

func storedName(id, ext string) string {
	if ext == "" {
		return id
	}
	return id + "." + ext
}

// Revert discards an upload its creator no longer wants, following the
// configured delete policy.
func (s *Service) Revert(ctx context.Context, userID int64, serverID string) error {
	upload, err := s.owned(ctx, userID, serverID)
	if err == nil {
		err = s.fp.discard(ctx, upload, s.fp.cfg.SoftDelete)
	}
	s.fp.metrics.Observe("revert", err)
	return err
}

// Restore opens a staged upload for its creator. The caller closes the reader.
func (s *Service) Restore(ctx context.Context, userID int64, serverID string) (*Upload, io.ReadCloser, error) {
	upload, err := s.owned(ctx, userID, serverID)
	if err != nil {
		return nil, nil, err
	}
	disk, err := s.fp.disk(upload.Disk)
	if err != nil {
		return nil, nil, err
	}
	rc, err := disk.Open(ctx, upload.Filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("open upload %s: %w", upload.ID, err)
	}
	return upload, rc, nil
}

func (s *Service) owned(ctx context.Context, userID int64, serverID string) (*Upload, error) {
	id, err := s.fp.codec.Decode(strings.TrimSpace(serverID))
	if err != nil || id == "" {
		return nil, ErrInvalidServerID
	}
	upload, err := s.fp.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUploadNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	if upload.CreatedBy != userID {
		return nil, ErrNotOwner
	}
	return upload, nil
}
