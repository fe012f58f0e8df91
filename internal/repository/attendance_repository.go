package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendease/attendease-api/internal/models"
)

// AttendanceRepository handles persistence for attendance rows. The table
// carries a unique constraint on (student_id, date); the absence of a row is
// the "unmarked" state and is never stored.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByClassDate returns the sparse set of rows for one class and one date.
func (r *AttendanceRepository) ListByClassDate(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, class_id, student_id, date, status, created_at, updated_at
        FROM attendance WHERE class_id = $1 AND date = $2`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance by class and date: %w", err)
	}
	return rows, nil
}

// FindByStudentDate returns the row for a (student, date) pair, or
// sql.ErrNoRows when the student is unmarked on that date.
func (r *AttendanceRepository) FindByStudentDate(ctx context.Context, studentID string, date time.Time) (*models.AttendanceRecord, error) {
	const query = `SELECT id, class_id, student_id, date, status, created_at, updated_at
        FROM attendance WHERE student_id = $1 AND date = $2 LIMIT 1`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, date); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a row for a previously unmarked (student, date) pair. A
// concurrent create for the same pair upgrades to an update on the existing
// row, so the uniqueness invariant holds under racing requests.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, class_id, student_id, date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (student_id, date)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
        RETURNING id, class_id, student_id, date, status, created_at, updated_at`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.ClassID, record.StudentID, record.Date, record.Status, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	return &stored, nil
}

// UpdateStatus rewrites the status field of an existing row.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, recordID string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	const query = `UPDATE attendance SET status = $2, updated_at = $3 WHERE id = $1
        RETURNING id, class_id, student_id, date, status, created_at, updated_at`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, recordID, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes a row, reverting the (student, date) pair to unmarked.
func (r *AttendanceRepository) Delete(ctx context.Context, recordID string) error {
	const query = `DELETE FROM attendance WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// ListDetails returns attendance rows joined with student and class names for
// the records browser and exports.
func (r *AttendanceRepository) ListDetails(ctx context.Context, filter models.AttendanceRecordFilter) ([]models.AttendanceRecordDetail, int, error) {
	base := `FROM attendance a
JOIN students s ON s.id = a.student_id
JOIN classes c ON c.id = a.class_id`
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"date":       "a.date",
		"status":     "a.status",
		"created_at": "a.created_at",
	}
	if sortBy == "" {
		sortBy = "date"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "a.date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.class_id, a.student_id, a.date, a.status, a.created_at, a.updated_at,
        s.name AS student_name, c.name AS class_name
        %s WHERE %s
        ORDER BY %s %s, s.name ASC
        LIMIT %d OFFSET %d`, base, whereClause, column, order, size, offset)

	var rows []models.AttendanceRecordDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance details: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance details: %w", err)
	}
	return rows, total, nil
}
