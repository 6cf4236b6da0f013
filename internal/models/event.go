package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a JSON-encoded list of strings stored in a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	return json.Unmarshal(data, l)
}

// Event represents a tracked event (training, award ceremony, meeting)
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Type        string     `gorm:"size:20;not null" json:"type"`
	Status      string     `gorm:"size:20;not null;default:PLANNED" json:"status"`
	StartAt     time.Time  `gorm:"not null;index" json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Location    *string    `json:"location"`
	Audience    *string    `json:"audience"`
	Description *string    `gorm:"type:text" json:"description"`
	Tags        StringList `gorm:"type:jsonb;default:'[]'" json:"tags"`
	Schools     StringList `gorm:"type:jsonb;default:'[]'" json:"schools"`
	CreatedBy   uint       `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Creator    *User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Files      []EventFile  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
	Attendance []Attendance `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"attendance,omitempty"`
	Notes      []EventNote  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}

// Event type constants
const (
	EventTypeTraining = "TRAINING"
	EventTypeAward    = "AWARD"
	EventTypeMeeting  = "MEETING"
	EventTypeOther    = "OTHER"
)

// Event status constants
const (
	EventStatusPlanned  = "PLANNED"
	EventStatusHeld     = "HELD"
	EventStatusArchived = "ARCHIVED"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeTraining, EventTypeAward, EventTypeMeeting, EventTypeOther:
		return true
	}
	return false
}

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
	switch s {
	case EventStatusPlanned, EventStatusHeld, EventStatusArchived:
		return true
	}
	return false
}

// EventResponse is the JSON response format for events
type EventResponse struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Type        string        `json:"type"`
	Status      string        `json:"status"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       *time.Time    `json:"end_at"`
	Location    *string       `json:"location"`
	Audience    *string       `json:"audience"`
	Description *string       `json:"description"`
	Tags        StringList    `json:"tags"`
	Schools     StringList    `json:"schools"`
	CreatedBy   uint          `json:"created_by"`
	Creator     *UserResponse `json:"creator,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ToResponse converts Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	resp := EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.Type,
		Status:      e.Status,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Location:    e.Location,
		Audience:    e.Audience,
		Description: e.Description,
		Tags:        e.Tags,
		Schools:     e.Schools,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Creator != nil {
		creator := e.Creator.ToResponse()
		resp.Creator = &creator
	}
	return resp
}
