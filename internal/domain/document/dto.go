package document

import (
	"time"

	"filepond/internal/domain/filepond"
)

type CreateDocumentRequest struct {
	Title string `form:"title" json:"title" validate:"required,max=200"`
}

type DocumentResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Attachments []string          `json:"attachments"`
	Files       []filepond.Result `json:"files,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toResponse(d *Document, files []filepond.Result) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Attachments: d.Attachments,
		Files:       files,
		CreatedAt:   d.CreatedAt,
	}
}
