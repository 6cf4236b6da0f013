package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/authz"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
	"github.com/pauloheg33/SIEDE/internal/statemachine"
	"github.com/pauloheg33/SIEDE/pkg/logger"
)

// EventService handles event lifecycle and ownership rules
type EventService struct {
	repos *repository.Repositories
	txm   TxManager
	audit AuditLogger
	store ObjectStore
}

// NewEventService creates a new event service
func NewEventService(repos *repository.Repositories, txm TxManager, audit AuditLogger, store ObjectStore) *EventService {
	return &EventService{repos: repos, txm: txm, audit: audit, store: store}
}

// CreateEventInput holds the event creation payload
type CreateEventInput struct {
	Title       string     `json:"title" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	StartAt     time.Time  `json:"start_at" binding:"required"`
	EndAt       *time.Time `json:"end_at"`
	Location    *string    `json:"location"`
	Audience    *string    `json:"audience"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	Schools     []string   `json:"schools"`
}

// UpdateEventInput holds optional fields for partial updates
type UpdateEventInput struct {
	Title       *string    `json:"title"`
	Type        *string    `json:"type"`
	Status      *string    `json:"status"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Location    *string    `json:"location"`
	Audience    *string    `json:"audience"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	Schools     []string   `json:"schools"`
}

// List returns events matching the filter, newest first
func (s *EventService) List(ctx context.Context, filter *repository.EventFilter) ([]models.Event, error) {
	return s.repos.Event.List(ctx, filter)
}

// Get returns one event with its creator preloaded
func (s *EventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repos.Event.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

// Create registers a new event owned by the actor
func (s *EventService) Create(ctx context.Context, actorID uint, input CreateEventInput) (*models.Event, error) {
	if _, err := activeActor(ctx, s.repos.User, actorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if len(title) < 3 {
		return nil, NewValidationError("título deve ter pelo menos 3 caracteres")
	}
	if !models.ValidEventType(input.Type) {
		return nil, NewValidationError("tipo de evento inválido: %s", input.Type)
	}
	if input.EndAt != nil && input.EndAt.Before(input.StartAt) {
		return nil, NewValidationError("término não pode ser anterior ao início")
	}

	event := &models.Event{
		Title:       title,
		Type:        input.Type,
		Status:      models.EventStatusPlanned,
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
		Location:    input.Location,
		Audience:    input.Audience,
		Description: input.Description,
		Tags:        models.StringList(input.Tags),
		Schools:     models.StringList(input.Schools),
		CreatedBy:   actorID,
	}

	err := s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Event.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionCreate, models.AuditEntityEvent, EntityID(event.ID), map[string]interface{}{
			"title": event.Title,
			"type":  event.Type,
		})
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update applies a partial update. Only the creator or an
// administrator may edit; ownership never changes.
func (s *EventService) Update(ctx context.Context, actorID, id uint, input UpdateEventInput) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditEvent(event, actor) {
		return nil, ErrForbidden
	}

	changes := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) < 3 {
			return nil, NewValidationError("título deve ter pelo menos 3 caracteres")
		}
		event.Title = title
		changes["title"] = title
	}
	if input.Type != nil {
		if !models.ValidEventType(*input.Type) {
			return nil, NewValidationError("tipo de evento inválido: %s", *input.Type)
		}
		event.Type = *input.Type
		changes["type"] = *input.Type
	}
	if input.Status != nil {
		if !models.ValidEventStatus(*input.Status) {
			return nil, NewValidationError("status de evento inválido: %s", *input.Status)
		}
		event.Status = *input.Status
		changes["status"] = *input.Status
	}
	if input.StartAt != nil {
		event.StartAt = *input.StartAt
		changes["start_at"] = input.StartAt.Format(time.RFC3339)
	}
	if input.EndAt != nil {
		event.EndAt = input.EndAt
		changes["end_at"] = input.EndAt.Format(time.RFC3339)
	}
	if input.Location != nil {
		event.Location = input.Location
		changes["location"] = *input.Location
	}
	if input.Audience != nil {
		event.Audience = input.Audience
		changes["audience"] = *input.Audience
	}
	if input.Description != nil {
		event.Description = input.Description
		changes["description"] = *input.Description
	}
	if input.Tags != nil {
		event.Tags = models.StringList(input.Tags)
		changes["tags"] = input.Tags
	}
	if input.Schools != nil {
		event.Schools = models.StringList(input.Schools)
		changes["schools"] = input.Schools
	}
	if event.EndAt != nil && event.EndAt.Before(event.StartAt) {
		return nil, NewValidationError("término não pode ser anterior ao início")
	}
	if len(changes) == 0 {
		return event, nil
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Event.WithTx(tx).Update(ctx, event); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionUpdate, models.AuditEntityEvent, EntityID(event.ID), changes)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event, its children and its stored files. Only
// administrators may delete.
func (s *EventService) Delete(ctx context.Context, actorID, id uint) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteEvent(event, actor) {
		return ErrForbidden
	}

	files, err := s.repos.File.ListByEvent(ctx, id, "")
	if err != nil {
		return err
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Event.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionDelete, models.AuditEntityEvent, EntityID(id), map[string]interface{}{
			"title": event.Title,
		})
	})
	if err != nil {
		return err
	}

	// Stored bytes are cleaned up after commit; a failure here leaves
	// orphan files on disk but never a half-deleted event.
	for _, f := range files {
		if err := s.store.Delete(f.Path); err != nil {
			logger.Warn("failed to remove stored file", "path", f.Path, "error", err)
		}
		if f.ThumbnailPath != nil {
			if err := s.store.Delete(*f.ThumbnailPath); err != nil {
				logger.Warn("failed to remove thumbnail", "path", *f.ThumbnailPath, "error", err)
			}
		}
	}
	return nil
}

// Hold marks a planned event as held
func (s *EventService) Hold(ctx context.Context, actorID, id uint) (*models.Event, error) {
	return s.transition(ctx, actorID, id, func(m *statemachine.EventFSM) error {
		return m.Hold(ctx)
	}, models.AuditActionUpdate)
}

// Archive moves an event to the archived state
func (s *EventService) Archive(ctx context.Context, actorID, id uint) (*models.Event, error) {
	return s.transition(ctx, actorID, id, func(m *statemachine.EventFSM) error {
		return m.Archive(ctx)
	}, models.AuditActionArchive)
}

func (s *EventService) transition(ctx context.Context, actorID, id uint, step func(*statemachine.EventFSM) error, action string) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditEvent(event, actor) {
		return nil, ErrForbidden
	}

	from := event.Status
	machine := statemachine.NewEventFSM(event)
	if err := step(machine); err != nil {
		return nil, NewValidationError("transição de status inválida a partir de %s", from)
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Event.WithTx(tx).Update(ctx, event); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, action, models.AuditEntityEvent, EntityID(event.ID), map[string]interface{}{
			"old_status": from,
			"new_status": event.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}
