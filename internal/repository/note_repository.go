package repository

import (
	"context"

	"github.com/pauloheg33/SIEDE/internal/models"
	"gorm.io/gorm"
)

// NoteRepository defines the interface for event note data access
type NoteRepository interface {
	WithTx(tx *gorm.DB) NoteRepository
	FindByID(ctx context.Context, eventID, id uint) (*models.EventNote, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.EventNote, error)
	Create(ctx context.Context, note *models.EventNote) error
	Update(ctx context.Context, note *models.EventNote) error
	Delete(ctx context.Context, id uint) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) WithTx(tx *gorm.DB) NoteRepository {
	return &noteRepository{db: tx}
}

func (r *noteRepository) FindByID(ctx context.Context, eventID, id uint) (*models.EventNote, error) {
	var note models.EventNote
	err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", id, eventID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.EventNote, error) {
	var notes []models.EventNote
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepository) Create(ctx context.Context, note *models.EventNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) Update(ctx context.Context, note *models.EventNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.EventNote{}, id).Error
}
