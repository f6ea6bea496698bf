package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/export"
)

const recordedAtLayout = "02/01/2006 15:04"

var statusLabels = map[models.AttendanceStatus]string{
	models.AttendanceStatusPresent: "Présent",
	models.AttendanceStatusAbsent:  "Absent",
	models.AttendanceStatusLate:    "En retard",
	models.AttendanceStatusExcused: "Excusé",
}

// Export column headers in display order.
const (
	colDate           = "Date"
	colClass          = "Classe"
	colStudentID      = "Matricule"
	colStudentName    = "Élève"
	colStatus         = "Statut"
	colArrivalTime    = "Heure d'arrivée"
	colNotes          = "Remarques"
	colRecordedBy     = "Enregistré par"
	colRecordedAt     = "Enregistré le"
	colParentNotified = "Parents notifiés"
)

var exportHeaders = []string{
	colDate, colClass, colStudentID, colStudentName, colStatus,
	colArrivalTime, colNotes, colRecordedBy, colRecordedAt, colParentNotified,
}

// StatusLabel returns the French display label of a status.
func StatusLabel(s models.AttendanceStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatusLabel maps a display label back to its status.
func ParseStatusLabel(label string) (models.AttendanceStatus, bool) {
	label = strings.TrimSpace(label)
	for status, l := range statusLabels {
		if l == label {
			return status, true
		}
	}
	return "", false
}

type recordLister interface {
	ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportRange is a resolved, inclusive export window.
type ExportRange struct {
	ClassName string
	StartDate string
	EndDate   string
}

// RenderedExport is an export document ready to be served or stored.
type RenderedExport struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// AttendanceExportService flattens records into labelled rows and renders
// them as CSV or PDF.
type AttendanceExportService struct {
	records recordLister
	csv     csvRenderer
	pdf     pdfRenderer
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttendanceExportService constructs the export service. Nil renderers
// fall back to the defaults of pkg/export.
func NewAttendanceExportService(records recordLister, csv csvRenderer, pdf pdfRenderer, loc *time.Location, logger *zap.Logger) *AttendanceExportService {
	if csv == nil {
		csv = export.NewCSVExporter(export.WithBOM())
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceExportService{records: records, csv: csv, pdf: pdf, loc: loc, logger: logger, now: time.Now}
}

// ResolveRange applies defaults: start is the first day of the current
// month, end is today.
func (s *AttendanceExportService) ResolveRange(className, startDate, endDate string) (ExportRange, error) {
	today := s.now().In(s.loc)
	r := ExportRange{
		ClassName: strings.TrimSpace(className),
		StartDate: strings.TrimSpace(startDate),
		EndDate:   strings.TrimSpace(endDate),
	}
	if r.StartDate == "" {
		r.StartDate = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc).Format(dateLayout)
	}
	if r.EndDate == "" {
		r.EndDate = today.Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, r.StartDate); err != nil {
		return r, appErrors.Clone(appErrors.ErrValidation, "invalid startDate, expected YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, r.EndDate); err != nil {
		return r, appErrors.Clone(appErrors.ErrValidation, "invalid endDate, expected YYYY-MM-DD")
	}
	if r.StartDate > r.EndDate {
		return r, appErrors.Clone(appErrors.ErrValidation, "startDate must not be after endDate")
	}
	return r, nil
}

// ExportRange returns one labelled row per record in the window, ordered by
// date, class, student name then student id.
func (s *AttendanceExportService) ExportRange(ctx context.Context, className, startDate, endDate string) ([]models.AttendanceExportRow, ExportRange, error) {
	r, err := s.ResolveRange(className, startDate, endDate)
	if err != nil {
		return nil, r, err
	}
	rows, err := s.ExportRows(ctx, r)
	return rows, r, err
}

// ExportRows lists the rows of an already resolved window.
func (s *AttendanceExportService) ExportRows(ctx context.Context, r ExportRange) ([]models.AttendanceExportRow, error) {
	records, err := s.records.ListRecords(ctx, models.RecordFilter{ClassName: r.ClassName, DateFrom: r.StartDate, DateTo: r.EndDate})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list attendance records")
	}
	rows := make([]models.AttendanceExportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.row(rec))
	}
	return rows, nil
}

func (s *AttendanceExportService) row(rec models.DailyAttendanceRecord) models.AttendanceExportRow {
	notified := "Non"
	if rec.ParentNotified {
		notified = "Oui"
	}
	return models.AttendanceExportRow{
		Date:           rec.Date,
		ClassName:      rec.ClassName,
		StudentID:      rec.StudentID,
		StudentName:    rec.StudentName,
		Status:         StatusLabel(rec.Status),
		ArrivalTime:    deref(rec.ArrivalTime),
		Notes:          deref(rec.Notes),
		RecordedBy:     rec.RecordedByName,
		RecordedAt:     rec.RecordedAt.In(s.loc).Format(recordedAtLayout),
		ParentNotified: notified,
	}
}

// Dataset converts rows into the tabular shape consumed by the renderers.
func Dataset(rows []models.AttendanceExportRow) export.Dataset {
	data := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			colDate:           r.Date,
			colClass:          r.ClassName,
			colStudentID:      r.StudentID,
			colStudentName:    r.StudentName,
			colStatus:         r.Status,
			colArrivalTime:    r.ArrivalTime,
			colNotes:          r.Notes,
			colRecordedBy:     r.RecordedBy,
			colRecordedAt:     r.RecordedAt,
			colParentNotified: r.ParentNotified,
		})
	}
	return data
}

// Render produces the export document for a window in the given format.
func (s *AttendanceExportService) Render(ctx context.Context, format models.ExportFormat, r ExportRange) (*RenderedExport, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	rows, err := s.ExportRows(ctx, r)
	if err != nil {
		return nil, err
	}
	data := Dataset(rows)

	out := &RenderedExport{Filename: exportFilename(r, format), Rows: len(rows)}
	switch format {
	case models.ExportFormatCSV:
		out.Body, err = s.csv.Render(data)
		out.ContentType = s.csv.ContentType()
	case models.ExportFormatPDF:
		out.Body, err = s.pdf.Render(data, exportTitle(r))
		out.ContentType = s.pdf.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance export")
	}
	s.logger.Debug("attendance export rendered",
		zap.String("format", string(format)),
		zap.String("class_name", r.ClassName),
		zap.String("start_date", r.StartDate),
		zap.String("end_date", r.EndDate),
		zap.Int("rows", len(rows)),
	)
	return out, nil
}

func exportTitle(r ExportRange) string {
	scope := "Toutes les classes"
	if r.ClassName != "" {
		scope = "Classe " + r.ClassName
	}
	return fmt.Sprintf("Présences - %s - du %s au %s", scope, r.StartDate, r.EndDate)
}

func exportFilename(r ExportRange, format models.ExportFormat) string {
	scope := "toutes-classes"
	if r.ClassName != "" {
		scope = sanitizeFilename(r.ClassName)
	}
	return fmt.Sprintf("presences_%s_%s_%s.%s", scope, r.StartDate, r.EndDate, format)
}

const maxFilenameScope = 100

// sanitizeFilename makes a class name safe for a file name, capped at
// maxFilenameScope bytes without splitting a multi-byte character.
func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) <= maxFilenameScope {
		return result
	}
	cut := maxFilenameScope
	for cut > 0 && !utf8.RuneStart(result[cut]) {
		cut--
	}
	return result[:cut]
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
