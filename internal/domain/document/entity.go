package document

import "time"

// Document is a committed record whose attachments were moved out of the
// temp area.
type Document struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"column:user_id;index" json:"user_id"`
	Title       string    `gorm:"column:title;size:200" json:"title"`
	Attachments []string  `gorm:"column:attachments;type:text;serializer:json" json:"attachments"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Document) TableName() string { return "documents" }
