package repository

import (
	"context"
	"time"

	"github.com/pauloheg33/SIEDE/internal/models"
	"gorm.io/gorm"
)

// EventFilter narrows event listings.
type EventFilter struct {
	Type      string
	Status    string
	StartFrom *time.Time
	StartTo   *time.Time
	Search    string
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter *EventFilter) ([]models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Preload("Creator").First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes the event and all of its child rows. Children are
// deleted explicitly so the cascade does not depend on the schema's
// FK constraints being in place.
func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("event_id = ?", id).Delete(&models.EventFile{}).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&models.EventNote{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Event{}, id).Error
}

func (r *eventRepository) List(ctx context.Context, filter *EventFilter) ([]models.Event, error) {
	var events []models.Event

	db := r.db.WithContext(ctx).Model(&models.Event{}).Preload("Creator")

	if filter != nil {
		if filter.Type != "" {
			db = db.Where("type = ?", filter.Type)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.StartFrom != nil {
			db = db.Where("start_at >= ?", *filter.StartFrom)
		}
		if filter.StartTo != nil {
			db = db.Where("start_at <= ?", *filter.StartTo)
		}
		if filter.Search != "" {
			db = db.Where("title ILIKE ?", "%"+filter.Search+"%")
		}
	}

	err := db.Order("start_at DESC").Find(&events).Error
	return events, err
}
