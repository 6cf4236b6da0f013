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

// NoteService handles free-form notes attached to events
type NoteService struct {
	repos *repository.Repositories
	txm   TxManager
	audit AuditLogger
}

// NewNoteService creates a new note service
func NewNoteService(repos *repository.Repositories, txm TxManager, audit AuditLogger) *NoteService {
	return &NoteService{repos: repos, txm: txm, audit: audit}
}

// List returns the notes of an event, newest first
func (s *NoteService) List(ctx context.Context, eventID uint) ([]models.EventNote, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repos.Note.ListByEvent(ctx, eventID)
}

// Create attaches a note to an event, authored by the actor
func (s *NoteService) Create(ctx context.Context, actorID, eventID uint, text string) (*models.EventNote, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	if _, err := activeActor(ctx, s.repos.User, actorID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("texto da nota não pode ser vazio")
	}

	note := &models.EventNote{
		EventID:   eventID,
		Text:      text,
		CreatedBy: actorID,
	}

	err := s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Note.WithTx(tx).Create(ctx, note); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionCreate, models.AuditEntityNote, EntityID(note.ID), map[string]interface{}{
			"event_id": eventID,
		})
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Update edits a note's text. The author may always edit their own
// note; otherwise event edit rights apply.
func (s *NoteService) Update(ctx context.Context, actorID, eventID, id uint, text string) (*models.EventNote, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}

	note, err := s.repos.Note.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditNote(note, event, actor) {
		return nil, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("texto da nota não pode ser vazio")
	}
	note.Text = text

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Note.WithTx(tx).Update(ctx, note); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionUpdate, models.AuditEntityNote, EntityID(note.ID), map[string]interface{}{
			"event_id": eventID,
		})
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note under the same rules as Update
func (s *NoteService) Delete(ctx context.Context, actorID, eventID, id uint) error {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return err
	}

	note, err := s.repos.Note.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return err
	}
	if !authz.CanEditNote(note, event, actor) {
		return ErrForbidden
	}

	return s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Note.WithTx(tx).Delete(ctx, note.ID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionDelete, models.AuditEntityNote, EntityID(note.ID), map[string]interface{}{
			"event_id": eventID,
		})
	})
}

func (s *NoteService) event(ctx context.Context, eventID uint) (*models.Event, error) {
	event, err := s.repos.Event.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}
