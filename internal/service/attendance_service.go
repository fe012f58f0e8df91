package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendease/attendease-api/internal/models"
	appErrors "github.com/attendease/attendease-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceRepository interface {
	ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecord, error)
	FindByStudentDate(ctx context.Context, studentID string, date time.Time) (*models.AttendanceRecord, error)
	Create(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, recordID string, status models.AttendanceStatus) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, recordID string) error
}

type rosterRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type classOwnershipRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceService builds the per-date attendance view and applies tri-state
// status changes against the persisted rows.
type AttendanceService struct {
	repo      attendanceRepository
	students  rosterRepository
	classes   classOwnershipRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students rosterRepository, classes classOwnershipRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, students: students, classes: classes, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// BuildView merges a roster with the sparse set of rows fetched for one class
// and date into a complete view: one entry per roster student, in roster
// order, defaulting to unmarked. Rows whose student has left the roster are
// dropped since they cannot be displayed against a roster line.
func BuildView(classID string, date time.Time, roster []models.Student, records []models.AttendanceRecord) models.AttendanceView {
	day := date.Format(dateLayout)
	view := models.AttendanceView{
		ClassID: classID,
		Date:    day,
		Entries: make([]models.AttendanceEntry, len(roster)),
	}
	index := make(map[string]int, len(roster))
	for i, student := range roster {
		view.Entries[i] = models.AttendanceEntry{
			StudentID:    student.ID,
			StudentName:  student.Name,
			StudentEmail: student.Email,
			Date:         day,
			Status:       models.AttendanceStatusUnmarked,
		}
		index[student.ID] = i
	}
	for _, record := range records {
		i, ok := index[record.StudentID]
		if !ok {
			continue
		}
		view.Entries[i].Status = record.Status
		view.Entries[i].RecordID = record.ID
	}
	return view
}

// Summarize folds a view into present/absent/unmarked totals.
func Summarize(view models.AttendanceView) models.AttendanceSummary {
	summary := models.AttendanceSummary{Total: len(view.Entries)}
	for _, entry := range view.Entries {
		switch entry.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		default:
			summary.Unmarked++
		}
	}
	return summary
}

// AttendanceViewResponse bundles the view with its summary fold.
type AttendanceViewResponse struct {
	View    models.AttendanceView    `json:"view"`
	Summary models.AttendanceSummary `json:"summary"`
}

// View fetches the roster and the day's rows for an owned class and merges
// them. An empty roster yields an empty view; zero rows yield an all-unmarked
// view.
func (s *AttendanceService) View(ctx context.Context, actorID, classID, rawDate string) (*AttendanceViewResponse, error) {
	date, err := parseDay(rawDate)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, actorID, classID); err != nil {
		return nil, err
	}

	roster, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch students")
	}
	records, err := s.repo.ListByClassDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance")
	}

	view := BuildView(classID, date, roster, records)
	return &AttendanceViewResponse{View: view, Summary: Summarize(view)}, nil
}

// SetStatusRequest carries one tri-state status change.
type SetStatusRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// SetStatusResult reports the confirmed entry after a mutation. Removed is
// true when the change deleted the row (or confirmed its absence), i.e. the
// student reverted to unmarked.
type SetStatusResult struct {
	Entry   models.AttendanceEntry `json:"entry"`
	Removed bool                   `json:"removed"`
}

// SetStatus applies the minimal persisted change for one student on one date:
//
//	no row      -> present/absent  create
//	no row      -> unmarked        no-op
//	row exists  -> present/absent  update (idempotent on same status)
//	row exists  -> unmarked        delete
//
// The entry returned reflects the server-confirmed state; callers patch their
// view with it only after success, so a failed call leaves the view on its
// last confirmed state.
func (s *AttendanceService) SetStatus(ctx context.Context, actorID, classID string, req SetStatusRequest) (*SetStatusResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, actorID, classID); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ClassID != classID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not in this class")
	}

	target := models.AttendanceStatus(strings.ToLower(req.Status))

	existing, err := s.repo.FindByStudentDate(ctx, req.StudentID, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	entry := models.AttendanceEntry{
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Date:         date.Format(dateLayout),
		Status:       models.AttendanceStatusUnmarked,
	}

	switch {
	case !target.Persistable():
		if existing == nil {
			// Already unmarked, nothing stored to remove.
			return &SetStatusResult{Entry: entry, Removed: true}, nil
		}
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance")
		}
		s.invalidateDashboard(ctx, actorID)
		return &SetStatusResult{Entry: entry, Removed: true}, nil

	case existing == nil:
		stored, err := s.repo.Create(ctx, &models.AttendanceRecord{
			ClassID:   classID,
			StudentID: req.StudentID,
			Date:      date,
			Status:    target,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
		}
		entry.Status = stored.Status
		entry.RecordID = stored.ID
		s.invalidateDashboard(ctx, actorID)
		return &SetStatusResult{Entry: entry}, nil

	default:
		stored, err := s.repo.UpdateStatus(ctx, existing.ID, target)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record no longer exists")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
		}
		entry.Status = stored.Status
		entry.RecordID = stored.ID
		return &SetStatusResult{Entry: entry}, nil
	}
}

func (s *AttendanceService) checkOwnership(ctx context.Context, actorID, classID string) error {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "class belongs to another teacher")
	}
	return nil
}

func (s *AttendanceService) invalidateDashboard(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, dashboardCacheKey(teacherID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func parseDay(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}
