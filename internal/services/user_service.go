package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/authz"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

// UserService handles account management. All operations here are
// restricted to administrators.
type UserService struct {
	repos *repository.Repositories
	txm   TxManager
	audit AuditLogger
}

// NewUserService creates a new user service
func NewUserService(repos *repository.Repositories, txm TxManager, audit AuditLogger) *UserService {
	return &UserService{repos: repos, txm: txm, audit: audit}
}

// CreateUserInput holds the admin-created account payload
type CreateUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// UpdateUserInput holds optional profile fields
type UpdateUserInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *UserService) requireAdmin(ctx context.Context, actorID uint) (*models.User, error) {
	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.HasRole(actor, models.RoleAdmin) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// List returns users matching the query
func (s *UserService) List(ctx context.Context, actorID uint, query *repository.ListQuery) ([]models.User, int64, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}
	return s.repos.User.List(ctx, query)
}

// Get returns one user by id
func (s *UserService) Get(ctx context.Context, actorID, id uint) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create adds an account on behalf of an administrator. An omitted
// role falls back to the default.
func (s *UserService) Create(ctx context.Context, actorID uint, input CreateUserInput) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.DefaultRole
	}
	if !models.ValidRole(role) {
		return nil, NewValidationError("papel inválido: %s", role)
	}
	if len(input.Password) < 8 {
		return nil, NewValidationError("senha deve ter pelo menos 8 caracteres")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		EncryptedPassword: hash,
		Role:              role,
		Active:            true,
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.User.WithTx(tx).Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrDuplicate
			}
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionCreate, models.AuditEntityUser, EntityID(user.ID), map[string]interface{}{
			"email": user.Email,
			"role":  user.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update changes profile fields of an existing user
func (s *UserService) Update(ctx context.Context, actorID, id uint, input UpdateUserInput) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	changes := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 {
			return nil, NewValidationError("nome deve ter pelo menos 2 caracteres")
		}
		user.Name = name
		changes["name"] = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		user.Email = email
		changes["email"] = email
	}
	if len(changes) == 0 {
		return user, nil
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.User.WithTx(tx).Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrDuplicate
			}
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionUpdate, models.AuditEntityUser, EntityID(user.ID), changes)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole assigns a new role and records the transition
func (s *UserService) ChangeRole(ctx context.Context, actorID, id uint, role string) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, NewValidationError("papel inválido: %s", role)
	}

	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldRole := user.Role
	if oldRole == role {
		return user, nil
	}
	user.Role = role

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.User.WithTx(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionChangeRole, models.AuditEntityUser, EntityID(user.ID), map[string]interface{}{
			"old_role": oldRole,
			"new_role": role,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleActive flips the account's active flag
func (s *UserService) ToggleActive(ctx context.Context, actorID, id uint) (*models.User, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.repos.User.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.Active = !user.Active
	action := models.AuditActionDeactivate
	if user.Active {
		action = models.AuditActionActivate
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.User.WithTx(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, action, models.AuditEntityUser, EntityID(user.ID), nil)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
