package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/pauloheg33/SIEDE/internal/models"
)

// ExportService renders attendance rosters into downloadable formats.
// It is pure formatting over already-authorized data and performs no
// I/O of its own.
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

func presenceLabel(present bool) string {
	if present {
		return "Sim"
	}
	return "Não"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RenderAttendanceCSV produces a CSV roster with a header row
func (s *ExportService) RenderAttendanceCSV(event *models.Event, rows []models.Attendance) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"person_name", "person_role", "school", "present"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.PersonName,
			deref(row.PersonRole),
			deref(row.School),
			presenceLabel(row.Present),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAttendancePDF produces a printable roster document
func (s *ExportService) RenderAttendancePDF(event *models.Event, rows []models.Attendance) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Lista de Presença - %s", event.Title), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Lista de Presença"))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(event.Title))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Data: %s", event.StartAt.Format("02/01/2006"))))
	pdf.Ln(10)

	widths := []float64{70, 40, 50, 20}
	headers := []string{"Nome", "Função", "Escola", "Presente"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 6, tr(row.PersonName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(deref(row.PersonRole)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(deref(row.School)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(presenceLabel(row.Present)), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Total de registros: %d", len(rows))))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAttendanceXLSX produces a spreadsheet roster
func (s *ExportService) RenderAttendanceXLSX(event *models.Event, rows []models.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Presença"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Nome", "Função", "Escola", "Presente"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "D1", headerStyle)
	}

	for i, row := range rows {
		values := []interface{}{
			row.PersonName,
			deref(row.PersonRole),
			deref(row.School),
			presenceLabel(row.Present),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 35)
	f.SetColWidth(sheet, "B", "C", 25)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
