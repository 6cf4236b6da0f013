package services

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

// AuditService persists the audit trail. Every mutating operation logs
// through here inside its own transaction, so the log entry and the
// mutation commit together or not at all.
type AuditService struct {
	repos *repository.Repositories
}

// NewAuditService creates a new audit service
func NewAuditService(repos *repository.Repositories) *AuditService {
	return &AuditService{repos: repos}
}

// Log writes one audit entry on the given transaction. A nil tx writes
// directly, which is only appropriate for actions with no companion
// mutation, such as exports.
func (s *AuditService) Log(ctx context.Context, tx *gorm.DB, actorID uint, action, entity, entityID string, details map[string]interface{}) error {
	entry := &models.AuditLog{
		UserID:   actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  models.JSONMap(details),
	}

	repo := s.repos.Audit
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		return &AuditWriteError{Err: err}
	}
	return nil
}

// List returns audit entries for administrators. Actor must hold the
// admin role.
func (s *AuditService) List(ctx context.Context, actorID uint, filter repository.AuditFilter) ([]models.AuditLog, int64, error) {
	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() {
		return nil, 0, ErrForbidden
	}
	return s.repos.Audit.List(ctx, filter)
}

// EntityID formats a numeric primary key for the entity_id column.
func EntityID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
