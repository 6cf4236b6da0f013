package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/services"
)

// NoteHandler exposes note endpoints nested under an event
type NoteHandler struct {
	notes *services.NoteService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	Text string `json:"text" binding:"required"`
}

// List godoc
// @Summary List the notes of an event
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {array} models.EventNote
// @Failure 404 {object} map[string]string
// @Router /events/{id}/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.notes.List(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, notes)
}

// Create godoc
// @Summary Attach a note to an event
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body noteRequest true "Note text"
// @Success 201 {object} models.EventNote
// @Failure 422 {object} map[string]string
// @Router /events/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	note, err := h.notes.Create(c.Request.Context(), actorID(c), eventID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// Update godoc
// @Summary Edit a note
// @Description The author may always edit their own note; otherwise event edit rights apply.
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param note_id path int true "Note ID"
// @Param request body noteRequest true "Note text"
// @Success 200 {object} models.EventNote
// @Failure 403 {object} map[string]string
// @Router /events/{id}/notes/{note_id} [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := uintParam(c, "note_id")
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	note, err := h.notes.Update(c.Request.Context(), actorID(c), eventID, noteID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param note_id path int true "Note ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /events/{id}/notes/{note_id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := uintParam(c, "note_id")
	if !ok {
		return
	}

	if err := h.notes.Delete(c.Request.Context(), actorID(c), eventID, noteID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
