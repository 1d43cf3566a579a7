package filepond

import (
	"path"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Upload is a staged file waiting to be attached to a permanent record.
// Filepath is relative to the root of Disk.
type Upload struct {
	ID        string         `gorm:"column:id;primaryKey;size:36" json:"id"`
	Filepath  string         `gorm:"column:filepath;not null" json:"-"`
	Filename  string         `gorm:"column:filename" json:"filename"`
	Extension string         `gorm:"column:extension" json:"extension"`
	Mimetypes string         `gorm:"column:mimetypes" json:"mimetypes"`
	Size      int64          `gorm:"column:size" json:"size"`
	Disk      string         `gorm:"column:disk;not null" json:"disk"`
	CreatedBy int64          `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt time.Time      `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Upload) TableName() string { return "fileponds" }

// Basename is the stored file name without directories.
func (u *Upload) Basename() string {
	return path.Base(u.Filepath)
}

func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}
