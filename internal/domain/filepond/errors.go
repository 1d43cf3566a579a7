package filepond

import "errors"

var (
	ErrUploadNotFound  = errors.New("upload not found")
	ErrDuplicateUpload = errors.New("upload already exists")
	ErrNotOwner        = errors.New("you do not own this upload")
	ErrInvalidServerID = errors.New("invalid server id")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyRuleSet    = errors.New("validation rules must not be empty")
)
