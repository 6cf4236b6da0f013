package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/services"
	"github.com/pauloheg33/SIEDE/pkg/logger"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Event      *EventHandler
	Attendance *AttendanceHandler
	File       *FileHandler
	Note       *NoteHandler
	Audit      *AuditHandler
}

// NewHandlers wires the service layer into HTTP handlers
func NewHandlers(svcs *services.Services, store services.ObjectStore) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svcs.Auth),
		User:       NewUserHandler(svcs.User),
		Event:      NewEventHandler(svcs.Event),
		Attendance: NewAttendanceHandler(svcs.Attendance),
		File:       NewFileHandler(svcs.File, store),
		Note:       NewNoteHandler(svcs.Note),
		Audit:      NewAuditHandler(svcs.Audit),
	}
}

// respondError translates service errors into HTTP responses without
// leaking driver or storage details.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var se *services.StorageError
	var awe *services.AuditWriteError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Message})
	case errors.As(err, &se):
		logger.Error("storage failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha no armazenamento de arquivos"})
	case errors.As(err, &awe):
		logger.Error("audit write failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "não foi possível registrar a operação"})
	default:
		logger.Error("unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
	}
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "requisição inválida: " + err.Error()})
}

// uintParam parses a numeric path parameter
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parâmetro inválido: " + name})
		return 0, false
	}
	return uint(v), true
}

// actorID returns the authenticated user's id from the context
func actorID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
