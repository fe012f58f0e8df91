package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendease/attendease-api/internal/models"
	appErrors "github.com/attendease/attendease-api/pkg/errors"
	"github.com/attendease/attendease-api/pkg/export"
)

type recordRepository interface {
	ListDetails(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.AttendanceRecordDetail, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendering for record exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// RecordListRequest filters the records browser.
type RecordListRequest struct {
	ClassID   string     `json:"class_id"`
	StudentID string     `json:"student_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// RecordExport is a rendered export ready for download.
type RecordExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// RecordService lists persisted attendance rows across classes and renders
// them for download.
type RecordService struct {
	repo      recordRepository
	csv       csvRenderer
	pdf       pdfRenderer
	maxRows   int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs RecordService.
func NewRecordService(repo recordRepository, csv csvRenderer, pdf pdfRenderer, maxRows int, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &RecordService{repo: repo, csv: csv, pdf: pdf, maxRows: maxRows, validator: validate, logger: logger}
}

// List returns paginated record details scoped to the actor's classes.
func (s *RecordService) List(ctx context.Context, actorID string, req RecordListRequest) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.AttendanceRecordFilter{
		TeacherID: actorID,
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      page,
		PageSize:  size,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	rows, total, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rows, pagination, nil
}

// Export renders the filtered records as a CSV or PDF attachment. The header
// row is Date,Class,Student,Status with dates formatted YYYY-MM-DD.
func (s *RecordService) Export(ctx context.Context, actorID string, req RecordListRequest, format ExportFormat) (*RecordExport, error) {
	filter := models.AttendanceRecordFilter{
		TeacherID: actorID,
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      1,
		PageSize:  s.maxRows,
		SortBy:    "date",
		SortOrder: "ASC",
	}
	rows, _, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Class", "Student", "Status"},
		Rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		dataset.Rows[i] = []string{
			row.Date.Format(dateLayout),
			row.ClassName,
			row.StudentName,
			string(row.Status),
		}
	}

	stamp := time.Now().UTC().Format(dateLayout)
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &RecordExport{
			Filename:    fmt.Sprintf("attendance_records_%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Attendance Records")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &RecordExport{
			Filename:    fmt.Sprintf("attendance_records_%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
