package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

func newAttendanceService(repos *repository.Repositories, audit *mockAuditLogger) *AttendanceService {
	return NewAttendanceService(testRepos(repos), fakeTxManager{}, audit, NewExportService())
}

func eventOwnedBy(userID uint) *models.Event {
	return &models.Event{ID: 7, Title: "Formação de Professores", Type: models.EventTypeTraining, Status: models.EventStatusPlanned, CreatedBy: userID}
}

func TestImportCSVMissingColumnRejectsWholeFile(t *testing.T) {
	creator := techUser(1)
	batchCalled := false

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
		Attendance: &mockAttendanceRepository{createBatchFunc: func(ctx context.Context, rows []models.Attendance) error {
			batchCalled = true
			return nil
		}},
	}, audit)

	csv := "person_name,person_role,present\nMaria Silva,Professora,sim\n"
	count, err := svc.ImportCSV(context.Background(), creator.ID, 7, []byte(csv))

	assert.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "school")
	assert.Equal(t, 0, count)
	assert.False(t, batchCalled, "no rows may be inserted when the header is invalid")
	assert.Empty(t, audit.entries)
}

func TestImportCSVPresentTokens(t *testing.T) {
	creator := techUser(1)
	var inserted []models.Attendance

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
		Attendance: &mockAttendanceRepository{createBatchFunc: func(ctx context.Context, rows []models.Attendance) error {
			inserted = rows
			return nil
		}},
	}, audit)

	csv := strings.Join([]string{
		"person_name,person_role,school,present",
		"Maria Silva,Professora,EM José Bonifácio,Sim",
		"João Souza,Diretor,EM Castro Alves,0",
		"Ana Lima,Coordenadora,EM Rui Barbosa,yes",
	}, "\n")

	count, err := svc.ImportCSV(context.Background(), creator.ID, 7, []byte(csv))

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	if assert.Len(t, inserted, 3) {
		assert.True(t, inserted[0].Present)
		assert.False(t, inserted[1].Present)
		assert.True(t, inserted[2].Present)
	}
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionImport, audit.entries[0].Action)
		assert.Equal(t, models.AuditEntityAttendance, audit.entries[0].Entity)
		assert.Equal(t, 3, audit.entries[0].Details["count"])
	}
}

func TestImportCSVToleratesBOM(t *testing.T) {
	creator := techUser(1)
	var inserted []models.Attendance

	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
		Attendance: &mockAttendanceRepository{createBatchFunc: func(ctx context.Context, rows []models.Attendance) error {
			inserted = rows
			return nil
		}},
	}, &mockAuditLogger{})

	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("person_name,person_role,school,present\nMaria Silva,,,presente\n")...)
	count, err := svc.ImportCSV(context.Background(), creator.ID, 7, data)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	if assert.Len(t, inserted, 1) {
		assert.Equal(t, "Maria Silva", inserted[0].PersonName)
		assert.True(t, inserted[0].Present)
		assert.Nil(t, inserted[0].PersonRole)
	}
}

func TestImportCSVForbiddenForNonCreator(t *testing.T) {
	creator := techUser(1)
	other := techUser(2)

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator, other)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit)

	csv := "person_name,person_role,school,present\nMaria Silva,,,sim\n"
	_, err := svc.ImportCSV(context.Background(), other.ID, 7, []byte(csv))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, audit.entries)
}

func TestAddRejectsShortName(t *testing.T) {
	creator := techUser(1)

	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, &mockAuditLogger{})

	_, err := svc.Add(context.Background(), creator.ID, 7, AddAttendanceInput{PersonName: "Jo"})

	assert.True(t, IsValidationError(err))
}

func TestAddDefaultsPresentTrue(t *testing.T) {
	creator := techUser(1)

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit)

	att, err := svc.Add(context.Background(), creator.ID, 7, AddAttendanceInput{PersonName: "Maria Silva"})

	assert.NoError(t, err)
	assert.True(t, att.Present)
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionCreate, audit.entries[0].Action)
	}
}

func TestMissingEventBeatsMissingPermission(t *testing.T) {
	// The actor could never edit this event, but the 404 must win so
	// existence cannot be probed.
	other := techUser(2)

	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(other)},
	}, &mockAuditLogger{})

	_, err := svc.Add(context.Background(), other.ID, 99, AddAttendanceInput{PersonName: "Maria Silva"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportCSVRendersRoster(t *testing.T) {
	creator := techUser(1)
	role := "Professora"
	school := "EM Castro Alves"

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
		Attendance: &mockAttendanceRepository{listByEventFunc: func(ctx context.Context, eventID uint) ([]models.Attendance, error) {
			return []models.Attendance{
				{PersonName: "Maria Silva", PersonRole: &role, School: &school, Present: true},
				{PersonName: "João Souza", Present: false},
			}, nil
		}},
	}, audit)

	out, filename, err := svc.ExportCSV(context.Background(), creator.ID, 7)

	assert.NoError(t, err)
	assert.Equal(t, "presenca_evento_7.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if assert.Len(t, lines, 3) {
		assert.Equal(t, "person_name,person_role,school,present", lines[0])
		assert.Contains(t, lines[1], "Sim")
		assert.Contains(t, lines[2], "Não")
	}
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionExportCSV, audit.entries[0].Action)
	}
}

func TestExportCSVDeactivatedActorForbidden(t *testing.T) {
	actor := deactivatedTech(1)

	audit := &mockAuditLogger{}
	svc := newAttendanceService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(actor)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(actor.ID), nil
		}},
	}, audit)

	_, _, err := svc.ExportCSV(context.Background(), actor.ID, 7)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, audit.entries)
}
