package models

import (
	"time"
)

// EventNote represents a free-text note attached to an event
type EventNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Event  Event `gorm:"foreignKey:EventID" json:"-"`
	Author User  `gorm:"foreignKey:CreatedBy" json:"-"`
}

// TableName specifies the table name for EventNote
func (EventNote) TableName() string {
	return "event_notes"
}
