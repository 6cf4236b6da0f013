package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
	"github.com/pauloheg33/SIEDE/internal/services"
)

// EventHandler exposes event CRUD and lifecycle endpoints
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List godoc
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param type query string false "Event type"
// @Param status query string false "Event status"
// @Param start_from query string false "Start date lower bound (RFC3339)"
// @Param start_to query string false "Start date upper bound (RFC3339)"
// @Param search query string false "Title search"
// @Success 200 {array} models.EventResponse
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter := &repository.EventFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if v := c.Query("start_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartFrom = &t
		}
	}
	if v := c.Query("start_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTo = &t
		}
	}

	events, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.EventResponse, len(events))
	for i, e := range events {
		responses[i] = e.ToResponse()
	}
	c.JSON(http.StatusOK, responses)
}

// Get godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event.ToResponse())
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateEventInput true "Event data"
// @Success 201 {object} models.EventResponse
// @Failure 422 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var input services.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	event, err := h.events.Create(c.Request.Context(), actorID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event.ToResponse())
}

// Update godoc
// @Summary Partially update an event
// @Description Only the creator or an administrator may edit.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body services.UpdateEventInput true "Fields to change"
// @Success 200 {object} models.EventResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var input services.UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	event, err := h.events.Update(c.Request.Context(), actorID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event.ToResponse())
}

// Delete godoc
// @Summary Delete an event and everything attached to it
// @Tags events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.events.Delete(c.Request.Context(), actorID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Hold godoc
// @Summary Mark a planned event as held
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventResponse
// @Failure 422 {object} map[string]string
// @Router /events/{id}/hold [post]
func (h *EventHandler) Hold(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	event, err := h.events.Hold(c.Request.Context(), actorID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event.ToResponse())
}

// Archive godoc
// @Summary Archive an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventResponse
// @Failure 422 {object} map[string]string
// @Router /events/{id}/archive [post]
func (h *EventHandler) Archive(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	event, err := h.events.Archive(c.Request.Context(), actorID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event.ToResponse())
}
