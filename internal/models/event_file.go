package models

import (
	"time"
)

// EventFile represents an uploaded file (photo or document) attached to an event
type EventFile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       uint      `gorm:"not null;index" json:"event_id"`
	Kind          string    `gorm:"size:10;not null" json:"kind"`
	Filename      string    `gorm:"not null" json:"filename"`
	Mime          string    `gorm:"not null" json:"mime"`
	Size          int64     `gorm:"not null" json:"size"`
	Path          string    `gorm:"not null" json:"path"`
	ThumbnailPath *string   `json:"thumbnail_path"`
	UploadedBy    uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`

	// Associations
	Event    Event `gorm:"foreignKey:EventID" json:"-"`
	Uploader User  `gorm:"foreignKey:UploadedBy" json:"-"`
}

// TableName specifies the table name for EventFile
func (EventFile) TableName() string {
	return "event_files"
}

// File kind constants
const (
	FileKindPhoto = "PHOTO"
	FileKindDoc   = "DOC"
)

// ValidFileKind reports whether k is a known file kind.
func ValidFileKind(k string) bool {
	return k == FileKindPhoto || k == FileKindDoc
}
