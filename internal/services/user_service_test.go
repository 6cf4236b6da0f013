package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

func newUserService(repos *repository.Repositories, audit *mockAuditLogger) *UserService {
	return NewUserService(testRepos(repos), fakeTxManager{}, audit)
}

func TestChangeRoleNonAdminForbidden(t *testing.T) {
	tech := techUser(2)
	target := techUser(3)

	audit := &mockAuditLogger{}
	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(tech, target)},
	}, audit)

	_, err := svc.ChangeRole(context.Background(), tech.ID, target.ID, models.RoleAdmin)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, audit.entries)
}

func TestChangeRoleRecordsTransition(t *testing.T) {
	admin := adminUser(1)
	target := techUser(3)

	audit := &mockAuditLogger{}
	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(admin, target)},
	}, audit)

	updated, err := svc.ChangeRole(context.Background(), admin.ID, target.ID, models.RoleFormationTech)

	assert.NoError(t, err)
	assert.Equal(t, models.RoleFormationTech, updated.Role)
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionChangeRole, audit.entries[0].Action)
		assert.Equal(t, models.RoleFollowupTech, audit.entries[0].Details["old_role"])
		assert.Equal(t, models.RoleFormationTech, audit.entries[0].Details["new_role"])
	}
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	admin := adminUser(1)

	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(admin)},
	}, &mockAuditLogger{})

	_, err := svc.ChangeRole(context.Background(), admin.ID, 3, "SUPERUSER")

	assert.True(t, IsValidationError(err))
}

func TestToggleActiveFlipsAndLogs(t *testing.T) {
	admin := adminUser(1)
	target := techUser(3)

	audit := &mockAuditLogger{}
	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(admin, target)},
	}, audit)

	updated, err := svc.ToggleActive(context.Background(), admin.ID, target.ID)

	assert.NoError(t, err)
	assert.False(t, updated.Active)
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionDeactivate, audit.entries[0].Action)
	}

	// Toggling again reactivates.
	updated, err = svc.ToggleActive(context.Background(), admin.ID, target.ID)
	assert.NoError(t, err)
	assert.True(t, updated.Active)
	if assert.Len(t, audit.entries, 2) {
		assert.Equal(t, models.AuditActionActivate, audit.entries[1].Action)
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	admin := adminUser(1)

	audit := &mockAuditLogger{}
	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(admin)},
	}, audit)

	user, err := svc.Create(context.Background(), admin.ID, CreateUserInput{
		Name:     "Nova Técnica",
		Email:    "nova@edu.gov.br",
		Password: "senha-segura",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.DefaultRole, user.Role)
	assert.True(t, user.Active)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	admin := adminUser(1)

	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{
			findByIDFunc: userLookup(admin),
			createFunc: func(ctx context.Context, user *models.User) error {
				return repository.ErrDuplicateEmail
			},
		},
	}, &mockAuditLogger{})

	_, err := svc.Create(context.Background(), admin.ID, CreateUserInput{
		Name:     "Nova Técnica",
		Email:    "nova@edu.gov.br",
		Password: "senha-segura",
	})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	tech := techUser(2)

	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(tech)},
	}, &mockAuditLogger{})

	_, _, err := svc.List(context.Background(), tech.ID, repository.NewListQuery())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInactiveAdminIsForbidden(t *testing.T) {
	admin := adminUser(1)
	admin.Active = false

	svc := newUserService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(admin)},
	}, &mockAuditLogger{})

	_, _, err := svc.List(context.Background(), admin.ID, repository.NewListQuery())

	assert.ErrorIs(t, err, ErrForbidden)
}
