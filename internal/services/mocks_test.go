package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

// fakeTxManager runs the callback without a real database. The nil tx
// is fine because the mocked repositories ignore WithTx.
type fakeTxManager struct{}

func (fakeTxManager) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// auditEntry captures one recorded action for assertions
type auditEntry struct {
	ActorID  uint
	Action   string
	Entity   string
	EntityID string
	Details  map[string]interface{}
}

type mockAuditLogger struct {
	entries []auditEntry
	failErr error
}

func (m *mockAuditLogger) Log(ctx context.Context, tx *gorm.DB, actorID uint, action, entity, entityID string, details map[string]interface{}) error {
	if m.failErr != nil {
		return &AuditWriteError{Err: m.failErr}
	}
	m.entries = append(m.entries, auditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	})
	return nil
}

type mockUserRepository struct {
	repository.UserRepository
	findByIDFunc    func(ctx context.Context, id uint) (*models.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	createFunc      func(ctx context.Context, user *models.User) error
	updateFunc      func(ctx context.Context, user *models.User) error
	listFunc        func(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error)
}

func (m *mockUserRepository) WithTx(tx *gorm.DB) repository.UserRepository { return m }

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, query)
	}
	return nil, 0, nil
}

type mockEventRepository struct {
	repository.EventRepository
	findByIDFunc func(ctx context.Context, id uint) (*models.Event, error)
	createFunc   func(ctx context.Context, event *models.Event) error
	updateFunc   func(ctx context.Context, event *models.Event) error
	deleteFunc   func(ctx context.Context, id uint) error
	listFunc     func(ctx context.Context, filter *repository.EventFilter) ([]models.Event, error)
}

func (m *mockEventRepository) WithTx(tx *gorm.DB) repository.EventRepository { return m }

func (m *mockEventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepository) Create(ctx context.Context, event *models.Event) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, event)
	}
	event.ID = 1
	return nil
}

func (m *mockEventRepository) Update(ctx context.Context, event *models.Event) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, event)
	}
	return nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) List(ctx context.Context, filter *repository.EventFilter) ([]models.Event, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

type mockAttendanceRepository struct {
	repository.AttendanceRepository
	findByIDFunc    func(ctx context.Context, eventID, id uint) (*models.Attendance, error)
	listByEventFunc func(ctx context.Context, eventID uint) ([]models.Attendance, error)
	createFunc      func(ctx context.Context, att *models.Attendance) error
	createBatchFunc func(ctx context.Context, rows []models.Attendance) error
	deleteFunc      func(ctx context.Context, id uint) error
}

func (m *mockAttendanceRepository) WithTx(tx *gorm.DB) repository.AttendanceRepository { return m }

func (m *mockAttendanceRepository) FindByID(ctx context.Context, eventID, id uint) (*models.Attendance, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, eventID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendance, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockAttendanceRepository) Create(ctx context.Context, att *models.Attendance) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, att)
	}
	att.ID = 1
	return nil
}

func (m *mockAttendanceRepository) CreateBatch(ctx context.Context, rows []models.Attendance) error {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, rows)
	}
	return nil
}

func (m *mockAttendanceRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockFileRepository struct {
	repository.FileRepository
	findByIDFunc    func(ctx context.Context, eventID, id uint) (*models.EventFile, error)
	listByEventFunc func(ctx context.Context, eventID uint, kind string) ([]models.EventFile, error)
	createFunc      func(ctx context.Context, file *models.EventFile) error
	deleteFunc      func(ctx context.Context, id uint) error
}

func (m *mockFileRepository) WithTx(tx *gorm.DB) repository.FileRepository { return m }

func (m *mockFileRepository) FindByID(ctx context.Context, eventID, id uint) (*models.EventFile, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, eventID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFileRepository) ListByEvent(ctx context.Context, eventID uint, kind string) ([]models.EventFile, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID, kind)
	}
	return nil, nil
}

func (m *mockFileRepository) Create(ctx context.Context, file *models.EventFile) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, file)
	}
	file.ID = 1
	return nil
}

func (m *mockFileRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockNoteRepository struct {
	repository.NoteRepository
	findByIDFunc    func(ctx context.Context, eventID, id uint) (*models.EventNote, error)
	listByEventFunc func(ctx context.Context, eventID uint) ([]models.EventNote, error)
	createFunc      func(ctx context.Context, note *models.EventNote) error
	updateFunc      func(ctx context.Context, note *models.EventNote) error
	deleteFunc      func(ctx context.Context, id uint) error
}

func (m *mockNoteRepository) WithTx(tx *gorm.DB) repository.NoteRepository { return m }

func (m *mockNoteRepository) FindByID(ctx context.Context, eventID, id uint) (*models.EventNote, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, eventID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNoteRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.EventNote, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *mockNoteRepository) Create(ctx context.Context, note *models.EventNote) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, note)
	}
	note.ID = 1
	return nil
}

func (m *mockNoteRepository) Update(ctx context.Context, note *models.EventNote) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, note)
	}
	return nil
}

func (m *mockNoteRepository) Delete(ctx context.Context, id uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockRefreshTokenRepository struct {
	repository.RefreshTokenRepository
	createFunc      func(ctx context.Context, rt *models.RefreshToken) error
	findByTokenFunc func(ctx context.Context, token string) (*models.RefreshToken, error)
	deleteFunc      func(ctx context.Context, token string) error
}

func (m *mockRefreshTokenRepository) WithTx(tx *gorm.DB) repository.RefreshTokenRepository {
	return m
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, rt *models.RefreshToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rt)
	}
	rt.ID = 1
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.findByTokenFunc != nil {
		return m.findByTokenFunc(ctx, token)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeStore keeps saved objects in memory
type fakeStore struct {
	saved   map[string][]byte
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string][]byte{}}
}

func (f *fakeStore) SaveBytes(data []byte, filename, subDir string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	locator := subDir + "/" + filename
	f.saved[locator] = data
	return locator, nil
}

func (f *fakeStore) Delete(locator string) error {
	delete(f.saved, locator)
	return nil
}

func (f *fakeStore) FullPath(locator string) string { return locator }

// fakeThumbnailer returns fixed bytes or an error
type fakeThumbnailer struct {
	out []byte
	err error
}

func (f *fakeThumbnailer) Thumbnail(data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return []byte("thumb"), nil
}

var errBoom = errors.New("boom")

// testRepos builds a Repositories value from mocks, defaulting any nil
// field to an empty mock.
func testRepos(r *repository.Repositories) *repository.Repositories {
	if r.User == nil {
		r.User = &mockUserRepository{}
	}
	if r.Event == nil {
		r.Event = &mockEventRepository{}
	}
	if r.File == nil {
		r.File = &mockFileRepository{}
	}
	if r.Attendance == nil {
		r.Attendance = &mockAttendanceRepository{}
	}
	if r.Note == nil {
		r.Note = &mockNoteRepository{}
	}
	if r.RefreshToken == nil {
		r.RefreshToken = &mockRefreshTokenRepository{}
	}
	return r
}

func adminUser(id uint) *models.User {
	return &models.User{ID: id, Name: "Admin", Email: "admin@edu.gov.br", Role: models.RoleAdmin, Active: true}
}

func techUser(id uint) *models.User {
	return &models.User{ID: id, Name: "Tech", Email: "tech@edu.gov.br", Role: models.RoleFollowupTech, Active: true}
}

func deactivatedTech(id uint) *models.User {
	u := techUser(id)
	u.Active = false
	return u
}

func userLookup(users ...*models.User) func(ctx context.Context, id uint) (*models.User, error) {
	return func(ctx context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
}
