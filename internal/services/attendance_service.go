package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/pauloheg33/SIEDE/internal/authz"
	"github.com/pauloheg33/SIEDE/internal/models"
	"github.com/pauloheg33/SIEDE/internal/repository"
)

// presentTokens are the accepted truthy spellings in import files.
var presentTokens = map[string]bool{
	"true":     true,
	"1":        true,
	"sim":      true,
	"yes":      true,
	"presente": true,
}

// AttendanceService handles event rosters, including bulk CSV import
// and tabular exports.
type AttendanceService struct {
	repos  *repository.Repositories
	txm    TxManager
	audit  AuditLogger
	export *ExportService
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(repos *repository.Repositories, txm TxManager, audit AuditLogger, export *ExportService) *AttendanceService {
	return &AttendanceService{repos: repos, txm: txm, audit: audit, export: export}
}

// AddAttendanceInput holds a single roster entry
type AddAttendanceInput struct {
	PersonName string  `json:"person_name" binding:"required"`
	PersonRole *string `json:"person_role"`
	School     *string `json:"school"`
	Present    *bool   `json:"present"`
}

// List returns the roster of an event ordered by person name
func (s *AttendanceService) List(ctx context.Context, eventID uint) ([]models.Attendance, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repos.Attendance.ListByEvent(ctx, eventID)
}

// Add appends one entry to the roster
func (s *AttendanceService) Add(ctx context.Context, actorID, eventID uint, input AddAttendanceInput) (*models.Attendance, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, actorID, event); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.PersonName)
	if len(name) < 3 {
		return nil, NewValidationError("nome da pessoa deve ter pelo menos 3 caracteres")
	}

	present := true
	if input.Present != nil {
		present = *input.Present
	}

	att := &models.Attendance{
		EventID:    eventID,
		PersonName: name,
		PersonRole: input.PersonRole,
		School:     input.School,
		Present:    present,
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Attendance.WithTx(tx).Create(ctx, att); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionCreate, models.AuditEntityAttendance, EntityID(att.ID), map[string]interface{}{
			"event_id":    eventID,
			"person_name": name,
		})
	})
	if err != nil {
		return nil, err
	}
	return att, nil
}

// Delete removes one roster entry
func (s *AttendanceService) Delete(ctx context.Context, actorID, eventID, id uint) error {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return err
	}

	att, err := s.repos.Attendance.FindByID(ctx, eventID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.requireEdit(ctx, actorID, event); err != nil {
		return err
	}

	return s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Attendance.WithTx(tx).Delete(ctx, att.ID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionDelete, models.AuditEntityAttendance, EntityID(att.ID), map[string]interface{}{
			"event_id":    eventID,
			"person_name": att.PersonName,
		})
	})
}

// ImportCSV parses a roster file and inserts all rows atomically. Any
// malformed row rejects the whole file.
func (s *AttendanceService) ImportCSV(ctx context.Context, actorID, eventID uint, data []byte) (int, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if err := s.requireEdit(ctx, actorID, event); err != nil {
		return 0, err
	}

	rows, err := parseAttendanceCSV(eventID, data)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, NewValidationError("arquivo não contém registros")
	}

	err = s.txm.Tx(ctx, func(tx *gorm.DB) error {
		if err := s.repos.Attendance.WithTx(tx).CreateBatch(ctx, rows); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, models.AuditActionImport, models.AuditEntityAttendance, EntityID(eventID), map[string]interface{}{
			"event_id": eventID,
			"count":    len(rows),
		})
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ExportCSV renders the roster as CSV and records the export
func (s *AttendanceService) ExportCSV(ctx context.Context, actorID, eventID uint) ([]byte, string, error) {
	event, rows, err := s.rosterFor(ctx, actorID, eventID)
	if err != nil {
		return nil, "", err
	}

	out, err := s.export.RenderAttendanceCSV(event, rows)
	if err != nil {
		return nil, "", err
	}
	if err := s.logExport(ctx, actorID, eventID, models.AuditActionExportCSV, len(rows)); err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("presenca_evento_%d.csv", eventID), nil
}

// ExportPDF renders the roster as a PDF document
func (s *AttendanceService) ExportPDF(ctx context.Context, actorID, eventID uint) ([]byte, string, error) {
	event, rows, err := s.rosterFor(ctx, actorID, eventID)
	if err != nil {
		return nil, "", err
	}

	out, err := s.export.RenderAttendancePDF(event, rows)
	if err != nil {
		return nil, "", err
	}
	if err := s.logExport(ctx, actorID, eventID, models.AuditActionExportPDF, len(rows)); err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("presenca_evento_%d.pdf", eventID), nil
}

// ExportXLSX renders the roster as a spreadsheet
func (s *AttendanceService) ExportXLSX(ctx context.Context, actorID, eventID uint) ([]byte, string, error) {
	event, rows, err := s.rosterFor(ctx, actorID, eventID)
	if err != nil {
		return nil, "", err
	}

	out, err := s.export.RenderAttendanceXLSX(event, rows)
	if err != nil {
		return nil, "", err
	}
	if err := s.logExport(ctx, actorID, eventID, models.AuditActionExportXLSX, len(rows)); err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("presenca_evento_%d.xlsx", eventID), nil
}

func (s *AttendanceService) rosterFor(ctx context.Context, actorID, eventID uint) (*models.Event, []models.Attendance, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := activeActor(ctx, s.repos.User, actorID); err != nil {
		return nil, nil, err
	}
	rows, err := s.repos.Attendance.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return event, rows, nil
}

func (s *AttendanceService) logExport(ctx context.Context, actorID, eventID uint, action string, count int) error {
	return s.audit.Log(ctx, nil, actorID, action, models.AuditEntityAttendance, EntityID(eventID), map[string]interface{}{
		"event_id": eventID,
		"count":    count,
	})
}

func (s *AttendanceService) event(ctx context.Context, eventID uint) (*models.Event, error) {
	event, err := s.repos.Event.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *AttendanceService) requireEdit(ctx context.Context, actorID uint, event *models.Event) error {
	actor, err := activeActor(ctx, s.repos.User, actorID)
	if err != nil {
		return err
	}
	if !authz.CanEditEvent(event, actor) {
		return ErrForbidden
	}
	return nil
}

// parseAttendanceCSV reads the whole file up front so that no rows are
// inserted when any of them is invalid.
func parseAttendanceCSV(eventID uint, data []byte) ([]models.Attendance, error) {
	// Tolerate a UTF-8 byte order mark from spreadsheet exports.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewValidationError("arquivo CSV vazio ou ilegível")
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"person_name", "person_role", "school", "present"} {
		if _, ok := cols[required]; !ok {
			return nil, NewValidationError("coluna obrigatória ausente: %s", required)
		}
	}
	nameIdx := cols["person_name"]
	roleIdx := cols["person_role"]
	schoolIdx := cols["school"]
	presentIdx := cols["present"]

	var rows []models.Attendance
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, NewValidationError("linha %d malformada", line)
		}

		name := strings.TrimSpace(record[nameIdx])
		if name == "" {
			continue
		}
		if len(name) < 3 {
			return nil, NewValidationError("linha %d: nome da pessoa deve ter pelo menos 3 caracteres", line)
		}

		att := models.Attendance{
			EventID:    eventID,
			PersonName: name,
			Present:    true,
		}
		if roleIdx < len(record) {
			if v := strings.TrimSpace(record[roleIdx]); v != "" {
				att.PersonRole = &v
			}
		}
		if schoolIdx < len(record) {
			if v := strings.TrimSpace(record[schoolIdx]); v != "" {
				att.School = &v
			}
		}
		if presentIdx < len(record) {
			token := strings.ToLower(strings.TrimSpace(record[presentIdx]))
			att.Present = presentTokens[token]
		}
		rows = append(rows, att)
	}

	return rows, nil
}
