package models

import (
	"time"
)

// Attendance represents one person on an event's attendance roster
type Attendance struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;index" json:"event_id"`
	PersonName string    `gorm:"not null" json:"person_name"`
	PersonRole *string   `json:"person_role"`
	School     *string   `json:"school"`
	Present    bool      `gorm:"not null;default:true" json:"present"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}

// TableName specifies the table name for Attendance
func (Attendance) TableName() string {
	return "attendance"
}
