package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pauloheg33/SIEDE/internal/services"
)

// AttendanceHandler exposes roster endpoints nested under an event
type AttendanceHandler struct {
	attendance *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary List the attendance roster of an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {array} models.Attendance
// @Failure 404 {object} map[string]string
// @Router /events/{id}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.attendance.List(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Add godoc
// @Summary Add one person to the roster
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body services.AddAttendanceInput true "Roster entry"
// @Success 201 {object} models.Attendance
// @Failure 422 {object} map[string]string
// @Router /events/{id}/attendance [post]
func (h *AttendanceHandler) Add(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var input services.AddAttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	row, err := h.attendance.Add(c.Request.Context(), actorID(c), eventID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

// Delete godoc
// @Summary Remove one person from the roster
// @Tags attendance
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param attendance_id path int true "Attendance ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /events/{id}/attendance/{attendance_id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	attID, ok := uintParam(c, "attendance_id")
	if !ok {
		return
	}

	if err := h.attendance.Delete(c.Request.Context(), actorID(c), eventID, attID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportCSV godoc
// @Summary Import a roster from a CSV file
// @Description All rows are imported atomically; any invalid row rejects the whole file.
// @Tags attendance
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param file formData file true "CSV file with person_name, person_role, school, present columns"
// @Success 201 {object} map[string]int
// @Failure 422 {object} map[string]string
// @Router /events/{id}/attendance/import [post]
func (h *AttendanceHandler) ImportCSV(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	count, err := h.attendance.ImportCSV(c.Request.Context(), actorID(c), eventID, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": count})
}

// ExportCSV godoc
// @Summary Download the roster as CSV
// @Tags attendance
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Router /events/{id}/attendance/export/csv [get]
func (h *AttendanceHandler) ExportCSV(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.attendance.ExportCSV(c.Request.Context(), actorID(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportPDF godoc
// @Summary Download the roster as PDF
// @Tags attendance
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Router /events/{id}/attendance/export/pdf [get]
func (h *AttendanceHandler) ExportPDF(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.attendance.ExportPDF(c.Request.Context(), actorID(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportXLSX godoc
// @Summary Download the roster as a spreadsheet
// @Tags attendance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {file} file
// @Router /events/{id}/attendance/export/xlsx [get]
func (h *AttendanceHandler) ExportXLSX(c *gin.Context) {
	eventID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.attendance.ExportXLSX(c.Request.Context(), actorID(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
