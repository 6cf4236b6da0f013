package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap is an open structured payload stored in a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
	return json.Unmarshal(data, m)
}

// AuditLog is an immutable, append-only record of a completed action.
// Entries are never updated or deleted after creation.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  string    `gorm:"size:50;not null" json:"entity_id"`
	Details   JSONMap   `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action vocabulary
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionLogin      = "LOGIN"
	AuditActionLogout     = "LOGOUT"
	AuditActionUpload     = "UPLOAD"
	AuditActionImport     = "IMPORT"
	AuditActionExportCSV  = "EXPORT_CSV"
	AuditActionExportPDF  = "EXPORT_PDF"
	AuditActionExportXLSX = "EXPORT_XLSX"
	AuditActionChangeRole = "CHANGE_ROLE"
	AuditActionActivate   = "ACTIVATE"
	AuditActionDeactivate = "DEACTIVATE"
	AuditActionArchive    = "ARCHIVE"
)

// Audit entity kinds
const (
	AuditEntityUser       = "user"
	AuditEntityEvent      = "event"
	AuditEntityFile       = "file"
	AuditEntityAttendance = "attendance"
	AuditEntityNote       = "note"
)
