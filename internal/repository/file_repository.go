package repository

import (
	"context"

	"github.com/pauloheg33/SIEDE/internal/models"
	"gorm.io/gorm"
)

// FileRepository defines the interface for event file data access
type FileRepository interface {
	WithTx(tx *gorm.DB) FileRepository
	FindByID(ctx context.Context, eventID, id uint) (*models.EventFile, error)
	ListByEvent(ctx context.Context, eventID uint, kind string) ([]models.EventFile, error)
	Create(ctx context.Context, file *models.EventFile) error
	Delete(ctx context.Context, id uint) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) WithTx(tx *gorm.DB) FileRepository {
	return &fileRepository{db: tx}
}

func (r *fileRepository) FindByID(ctx context.Context, eventID, id uint) (*models.EventFile, error) {
	var file models.EventFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", id, eventID).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByEvent(ctx context.Context, eventID uint, kind string) ([]models.EventFile, error) {
	var files []models.EventFile
	db := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	err := db.Order("created_at DESC").Find(&files).Error
	return files, err
}

func (r *fileRepository) Create(ctx context.Context, file *models.EventFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.EventFile{}, id).Error
}
