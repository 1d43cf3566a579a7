package document

import (
	"context"
	"fmt"

	"filepond/internal/domain/filepond"
	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/validator"
)

// AttachmentRules applies to every file of the attachments field.
const AttachmentRules = "required|file|max:5000"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the staged attachments, moves them under
// documents/{userID} and stores the document.
func (s *Service) Create(ctx context.Context, userID int64, title string, attachments *filepond.Field) (*Document, []filepond.Result, error) {
	if err := checkOwner(userID, attachments); err != nil {
		return nil, nil, err
	}

	key := attachments.Name()
	if attachments.IsMultiple() {
		key += ".*"
	}
	if err := attachments.Validate(validator.Rules(key, AttachmentRules), nil, nil); err != nil {
		return nil, nil, err
	}

	results, err := attachments.MoveTo(ctx, fmt.Sprintf("documents/%d", userID))
	if err != nil {
		return nil, results, fmt.Errorf("move attachments: %w", err)
	}

	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.FileURL)
	}

	doc := &Document{UserID: userID, Title: title, Attachments: paths}
	if err := s.repo.Create(ctx, doc); err != nil {
		logging.Error("document not saved after moving attachments", "user_id", userID, "paths", paths, "err", err)
		return nil, results, fmt.Errorf("save document: %w", err)
	}
	return doc, results, nil
}

// Discard drops staged attachments the user decided not to submit.
func (s *Service) Discard(ctx context.Context, userID int64, attachments *filepond.Field) error {
	if err := checkOwner(userID, attachments); err != nil {
		return err
	}
	return attachments.Delete(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func checkOwner(userID int64, f *filepond.Field) error {
	for _, u := range f.GetModel() {
		if u.CreatedBy != userID {
			return ErrForeignUpload
		}
	}
	return nil
}
