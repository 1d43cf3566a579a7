package document

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrForeignUpload    = errors.New("attachment belongs to another user")
)
