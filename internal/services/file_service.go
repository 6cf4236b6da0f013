package services

import (
	"context"
	"errors"
	"fmt"
	"path"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/authz"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
	"github.com/pauloheg33/SIEDE/pkg/logger"
)

// maxFileSize caps each uploaded file at 10 MiB.
const maxFileSize = 10 * 1024 * 1024

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedDocTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/zip": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// FileService handles file attachments on events
type FileService struct {
	repos *repository.Repositories
	txm   TxManager
	audit AuditLogger
	store ObjectStore
	thumb Thumbnailer
}

// NewFileService creates a new file service
func NewFileService(repos *repository.Repositories, txm TxManager, audit AuditLogger, store ObjectStore, thumb Thumbnailer) *FileService {
	return &FileService{repos: repos, txm: txm, audit: audit, store: store, thumb: thumb}
}

// UploadInput holds one file from a multipart request
type UploadInput struct {
	Filename string
	Mime     string
	Data     []byte
}

// List returns files of an event, optionally filtered by kind
func (s *FileService) List(ctx context.Context, eventID uint, kind string) ([]models.EventFile, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	if kind != "" && !models.ValidFileKind(kind) {
		return nil, NewValidationError("tipo de arquivo inválido: %s", kind)
	}
	return s.repos.File.ListByEvent(ctx, eventID, kind)
}

// Get returns one file record
func (s *FileService) Get(ctx context.Context, eventID, id uint) (*models.EventFile, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	file, err := s.repos.File.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// Upload stores one or more files under an event. Every file is
// validated before any bytes hit storage; thumbnails are best-effort
// and never fail the upload.
func (s *FileService) Upload(ctx context.Context, actorID, eventID uint, kind string, inputs []UploadInput) ([]models.EventFile, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, actorID, event); err != nil {
		return nil, err
	}

	if !models.ValidFileKind(kind) {
		return nil, NewValidationError("tipo de arquivo inválido: %s", kind)
	}
	if len(inputs) == 0 {
		return nil, NewValidationError("nenhum arquivo enviado")
	}
	for _, in := range inputs {
		if err := validateUpload(kind, in); err != nil {
			return nil, err
		}
	}

	uploaded := make([]models.EventFile, 0, len(inputs))
	for _, in := range inputs {
		locator, err := s.store.SaveBytes(in.Data, in.Filename, kind)
		if err != nil {
			return uploaded, &StorageError{Op: "upload", Err: err}
		}

		var thumbPath *string
		if kind == models.FileKindPhoto {
			if data, err := s.thumb.Thumbnail(in.Data); err != nil {
				logger.Warn("thumbnail generation failed", "filename", in.Filename, "error", err)
			} else {
				name := thumbName(in.Filename)
				if loc, err := s.store.SaveBytes(data, name, "thumbnails"); err != nil {
					logger.Warn("thumbnail storage failed", "filename", in.Filename, "error", err)
				} else {
					thumbPath = &loc
				}
			}
		}

		file := models.EventFile{
			EventID:       eventID,
			Kind:          kind,
			Filename:      in.Filename,
			Mime:          in.Mime,
			Size:          int64(len(in.Data)),
			Path:          locator,
			ThumbnailPath: thumbPath,
			UploadedBy:    actorID,
		}

		err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
			if err := s.repos.File.WithTx(tx).Create(ctx, &file); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, actorID, models.AuditActionUpload, models.AuditEntityFile, EntityID(file.ID), map[string]interface{}{
				"event_id": eventID,
				"filename": in.Filename,
				"kind":     kind,
			})
		})
		if err != nil {
			// The record never existed; remove the stored bytes.
			if derr := s.store.Delete(locator); derr != nil {
				logger.Warn("failed to remove stored file after rollback", "path", locator, "error", derr)
			}
			return uploaded, err
		}

		uploaded = append(uploaded, file)
	}

	return uploaded, nil
}

// Delete removes a file record and its stored bytes
func (s *FileService) Delete(ctx context.Context, actorID, eventID, id uint) error {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return err
	}

	file, err := s.repos.File.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.requireEdit(ctx, actorID, event); err != nil {
		return err
	}

	if err := s.store.Delete(file.Path); err != nil {
		logger.Warn("failed to remove stored file", "path", file.Path, "error", err)
	}
	if file.ThumbnailPath != nil {
		if err := s.store.Delete(*file.ThumbnailPath); err != nil {
			logger.Warn("failed to remove thumbnail", "path", *file.ThumbnailPath, "error", err)
		}
	}

	return s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.File.WithTx(tx).Delete(ctx, file.ID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionDelete, models.AuditEntityFile, EntityID(file.ID), map[string]interface{}{
			"event_id": eventID,
			"filename": file.Filename,
		})
	})
}

func validateUpload(kind string, in UploadInput) error {
	switch kind {
	case models.FileKindPhoto:
		if !allowedPhotoTypes[in.Mime] {
			return NewValidationError("tipo de foto inválido: %s", in.Mime)
		}
	case models.FileKindDoc:
		if !allowedDocTypes[in.Mime] {
			return NewValidationError("tipo de documento inválido: %s", in.Mime)
		}
	}
	if int64(len(in.Data)) > maxFileSize {
		return NewValidationError("arquivo muito grande: %s (máximo 10MB)", in.Filename)
	}
	return nil
}

func thumbName(filename string) string {
	ext := path.Ext(filename)
	base := filename[:len(filename)-len(ext)]
	return fmt.Sprintf("%s_thumb.jpg", base)
}

func (s *FileService) event(ctx context.Context, eventID uint) (*models.Event, error) {
	event, err := s.repos.Event.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *FileService) requireEdit(ctx context.Context, actorID uint, event *models.Event) error {
	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return err
	}
	if !authz.CanEditEvent(event, actor) {
		return ErrForbidden
	}
	return nil
}
