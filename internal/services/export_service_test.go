package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"github.com/pauloheg33/SIEDE/internal/models"
)

func sampleRoster() (*models.Event, []models.Attendance) {
	role := "Professora"
	school := "EM Castro Alves"
	event := &models.Event{
		ID:      7,
		Title:   "Formação de Professores",
		Type:    models.EventTypeTraining,
		StartAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	rows := []models.Attendance{
		{PersonName: "Maria Silva", PersonRole: &role, School: &school, Present: true},
		{PersonName: "João Souza", Present: false},
	}
	return event, rows
}

func TestRenderAttendancePDF(t *testing.T) {
	event, rows := sampleRoster()

	out, err := NewExportService().RenderAttendancePDF(event, rows)

	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must be a PDF document")
}

func TestRenderAttendanceXLSX(t *testing.T) {
	event, rows := sampleRoster()

	out, err := NewExportService().RenderAttendanceXLSX(event, rows)

	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	assert.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Presença", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "Maria Silva", name)

	present, err := f.GetCellValue("Presença", "D3")
	assert.NoError(t, err)
	assert.Equal(t, "Não", present)
}

func TestRenderAttendanceCSVEmptyRoster(t *testing.T) {
	event, _ := sampleRoster()

	out, err := NewExportService().RenderAttendanceCSV(event, nil)

	assert.NoError(t, err)
	assert.Equal(t, "person_name,person_role,school,present\n", string(out))
}
