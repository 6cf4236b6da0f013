package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

func newFileService(repos *repository.Repositories, audit *mockAuditLogger, store *fakeStore, thumb Thumbnailer) *FileService {
	if store == nil {
		store = newFakeStore()
	}
	if thumb == nil {
		thumb = &fakeThumbnailer{}
	}
	return NewFileService(testRepos(repos), fakeTxManager{}, audit, store, thumb)
}

func TestUploadRejectsBadMimeBeforeStorage(t *testing.T) {
	creator := techUser(1)
	store := newFakeStore()

	audit := &mockAuditLogger{}
	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit, store, nil)

	_, err := svc.Upload(context.Background(), creator.ID, 7, models.FileKindPhoto, []UploadInput{
		{Filename: "foto.jpg", Mime: "image/jpeg", Data: []byte("jpeg")},
		{Filename: "arquivo.zip", Mime: "application/zip", Data: []byte("zip")},
	})

	assert.True(t, IsValidationError(err))
	assert.Empty(t, store.saved, "nothing may reach storage when any file is invalid")
	assert.Empty(t, audit.entries)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	creator := techUser(1)

	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, &mockAuditLogger{}, nil, nil)

	big := bytes.Repeat([]byte("a"), maxFileSize+1)
	_, err := svc.Upload(context.Background(), creator.ID, 7, models.FileKindDoc, []UploadInput{
		{Filename: "relatorio.pdf", Mime: "application/pdf", Data: big},
	})

	assert.True(t, IsValidationError(err))
}

func TestUploadPhotoStoresThumbnail(t *testing.T) {
	creator := techUser(1)
	store := newFakeStore()

	audit := &mockAuditLogger{}
	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit, store, &fakeThumbnailer{out: []byte("small")})

	files, err := svc.Upload(context.Background(), creator.ID, 7, models.FileKindPhoto, []UploadInput{
		{Filename: "foto.png", Mime: "image/png", Data: []byte("png-bytes")},
	})

	assert.NoError(t, err)
	if assert.Len(t, files, 1) {
		assert.NotNil(t, files[0].ThumbnailPath)
		assert.Equal(t, "thumbnails/foto_thumb.jpg", *files[0].ThumbnailPath)
	}
	assert.Len(t, store.saved, 2)
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionUpload, audit.entries[0].Action)
		assert.Equal(t, models.AuditEntityFile, audit.entries[0].Entity)
	}
}

func TestUploadThumbnailFailureIsBestEffort(t *testing.T) {
	creator := techUser(1)
	store := newFakeStore()

	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, &mockAuditLogger{}, store, &fakeThumbnailer{err: errBoom})

	files, err := svc.Upload(context.Background(), creator.ID, 7, models.FileKindPhoto, []UploadInput{
		{Filename: "foto.jpg", Mime: "image/jpeg", Data: []byte("jpeg-bytes")},
	})

	assert.NoError(t, err)
	if assert.Len(t, files, 1) {
		assert.Nil(t, files[0].ThumbnailPath)
	}
	assert.Len(t, store.saved, 1, "only the original is stored")
}

func TestUploadForbiddenForNonCreator(t *testing.T) {
	creator := techUser(1)
	other := techUser(2)
	store := newFakeStore()

	audit := &mockAuditLogger{}
	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator, other)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit, store, nil)

	_, err := svc.Upload(context.Background(), other.ID, 7, models.FileKindPhoto, []UploadInput{
		{Filename: "foto.jpg", Mime: "image/jpeg", Data: []byte("jpeg")},
	})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.saved)
	assert.Empty(t, audit.entries)
}

func TestDeleteRemovesStoredBytes(t *testing.T) {
	creator := techUser(1)
	store := newFakeStore()
	store.saved["PHOTO/foto.jpg"] = []byte("jpeg")
	store.saved["thumbnails/foto_thumb.jpg"] = []byte("small")
	thumbPath := "thumbnails/foto_thumb.jpg"

	audit := &mockAuditLogger{}
	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
		File: &mockFileRepository{findByIDFunc: func(ctx context.Context, eventID, id uint) (*models.EventFile, error) {
			return &models.EventFile{ID: id, EventID: eventID, Kind: models.FileKindPhoto, Filename: "foto.jpg", Path: "PHOTO/foto.jpg", ThumbnailPath: &thumbPath}, nil
		}},
	}, audit, store, nil)

	err := svc.Delete(context.Background(), creator.ID, 7, 3)

	assert.NoError(t, err)
	assert.Empty(t, store.saved)
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, models.AuditActionDelete, audit.entries[0].Action)
	}
}

func TestUploadDeactivatedCreatorForbidden(t *testing.T) {
	creator := deactivatedTech(1)
	store := newFakeStore()

	audit := &mockAuditLogger{}
	svc := newFileService(&repository.Repositories{
		User: &mockUserRepository{findByIDFunc: userLookup(creator)},
		Event: &mockEventRepository{findByIDFunc: func(ctx context.Context, id uint) (*models.Event, error) {
			return eventOwnedBy(creator.ID), nil
		}},
	}, audit, store, nil)

	_, err := svc.Upload(context.Background(), creator.ID, 7, models.FileKindPhoto, []UploadInput{
		{Filename: "foto.jpg", Mime: "image/jpeg", Data: []byte("jpeg")},
	})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.saved)
	assert.Empty(t, audit.entries)
}
