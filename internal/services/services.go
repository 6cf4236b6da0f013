package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/config"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

// TxManager runs a function inside a database transaction. Mutations
// and their audit entries share one transaction so they commit or roll
// back together.
type TxManager interface {
	Tx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AuditLogger records who did what. Implementations must honor the
// transaction handed to Log so the entry shares the caller's fate.
type AuditLogger interface {
	Log(ctx context.Context, tx *gorm.DB, actorID uint, action, entity, entityID string, details map[string]interface{}) error
}

// ObjectStore persists uploaded file bytes outside the database.
type ObjectStore interface {
	SaveBytes(data []byte, filename string, subDir string) (string, error)
	Delete(locator string) error
	FullPath(locator string) string
}

// Thumbnailer produces a reduced preview for an uploaded image.
type Thumbnailer interface {
	Thumbnail(data []byte) ([]byte, error)
}

// activeActor loads the acting user and rejects deactivated accounts.
// Access tokens outlive a deactivation, so every service re-reads the
// user row instead of trusting the token claims alone.
func activeActor(ctx context.Context, users repository.UserRepository, actorID uint) (*models.User, error) {
	actor, err := users.FindByID(ctx, actorID)
	if err != nil {
		return nil, ErrForbidden
	}
	if !actor.IsActive() {
		return nil, ErrForbidden
	}
	return actor, nil
}

// Services aggregates all business services
type Services struct {
	Audit      *AuditService
	Auth       *AuthService
	User       *UserService
	Event      *EventService
	Attendance *AttendanceService
	File       *FileService
	Note       *NoteService
}

// NewServices wires repositories, storage and transaction management
// into the service layer.
func NewServices(repos *repository.Repositories, txm TxManager, store ObjectStore, thumb Thumbnailer, cfg *config.Config) *Services {
	audit := NewAuditService(repos)
	export := NewExportService()

	return &Services{
		Audit:      audit,
		Auth:       NewAuthService(repos, txm, audit, cfg),
		User:       NewUserService(repos, txm, audit),
		Event:      NewEventService(repos, txm, audit, store),
		Attendance: NewAttendanceService(repos, txm, audit, export),
		File:       NewFileService(repos, txm, audit, store, thumb),
		Note:       NewNoteService(repos, txm, audit),
	}
}
