package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/services"
)

// FileHandler exposes file attachment endpoints nested under an event
type FileHandler struct {
	files *services.FileService
	store services.ObjectStore
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *services.FileService, store services.ObjectStore) *FileHandler {
	return &FileHandler{files: files, store: store}
}

// List godoc
// @Summary List files of an event
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param kind query string false "PHOTO or DOC"
// @Success 200 {array} models.EventFile
// @Failure 404 {object} map[string]string
// @Router /events/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	files, err := h.files.List(c.Request.Context(), eventID, c.Query("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// Upload godoc
// @Summary Upload photos or documents to an event
// @Description Validates every file before storing any. Photos get a best-effort thumbnail.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param kind query string true "PHOTO or DOC"
// @Param files formData file true "Files (up to 10MB each)"
// @Success 201 {array} models.EventFile
// @Failure 422 {object} map[string]string
// @Router /events/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var inputs []services.UploadInput
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		inputs = append(inputs, services.UploadInput{
			Filename: fh.Filename,
			Mime:     fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	files, err := h.files.Upload(c.Request.Context(), actorID(c), eventID, c.Query("kind"), inputs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, files)
}

// Download godoc
// @Summary Download a file's bytes
// @Tags files
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param file_id path int true "File ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /events/{id}/files/{file_id}/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := uintParam(c, "file_id")
	if !ok {
		return
	}

	file, err := h.files.Get(c.Request.Context(), eventID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Header("Content-Type", file.Mime)
	c.File(h.store.FullPath(file.Path))
}

// Delete godoc
// @Summary Delete a file
// @Tags files
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param file_id path int true "File ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /events/{id}/files/{file_id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := uintParam(c, "file_id")
	if !ok {
		return
	}

	if err := h.files.Delete(c.Request.Context(), actorID(c), eventID, fileID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
