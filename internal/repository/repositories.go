package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Event        EventRepository
	File         FileRepository
	Attendance   AttendanceRepository
	Note         NoteRepository
	RefreshToken RefreshTokenRepository
	Audit        AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Event:        NewEventRepository(db),
		File:         NewFileRepository(db),
		Attendance:   NewAttendanceRepository(db),
		Note:         NewNoteRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
