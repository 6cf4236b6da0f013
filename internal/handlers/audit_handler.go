package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/repository"
	"github.com/pauloheg33/SIEDE/internal/services"
)

// AuditHandler exposes the read-only audit trail to administrators
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit entries
// @Tags audits
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "Acting user filter"
// @Param action query string false "Action filter"
// @Param entity query string false "Entity kind filter"
// @Param from query string false "Lower time bound (RFC3339)"
// @Param to query string false "Upper time bound (RFC3339)"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /audits [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := repository.AuditFilter{
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
	}
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		filter.UserID = uint(v)
	}
	if t, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &t
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		filter.PerPage = v
	}

	entries, total, err := h.audit.List(c.Request.Context(), actorID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  entries,
		"total": total,
	})
}
