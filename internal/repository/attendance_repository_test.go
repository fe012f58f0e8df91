package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/attendease/attendease-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceColumns() []string {
	return []string{"id", "class_id", "student_id", "date", "status", "created_at", "updated_at"}
}

func TestAttendanceRepositoryListByClassDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceColumns()).
		AddRow("r1", "c1", "s1", date, "present", time.Now(), time.Now()).
		AddRow("r2", "c1", "s2", date, "absent", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, student_id, date, status, created_at, updated_at")).
		WithArgs("c1", date).
		WillReturnRows(rows)

	records, err := repo.ListByClassDate(context.Background(), "c1", date)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, models.AttendanceStatusPresent, records[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindByStudentDateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, student_id, date, status, created_at, updated_at")).
		WithArgs("s1", date).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentDate(context.Background(), "s1", date)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreateUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceColumns()).
		AddRow("r1", "c1", "s1", date, "present", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnRows(rows)

	stored, err := repo.Create(context.Background(), &models.AttendanceRecord{
		ClassID:   "c1",
		StudentID: "s1",
		Date:      date,
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	require.Equal(t, "r1", stored.ID)
	require.Equal(t, models.AttendanceStatusPresent, stored.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceColumns()).
		AddRow("r1", "c1", "s1", date, "absent", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance SET status")).
		WillReturnRows(rows)

	stored, err := repo.UpdateStatus(context.Background(), "r1", models.AttendanceStatusAbsent)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceStatusAbsent, stored.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListDetailsFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	columns := append(attendanceColumns(), "student_name", "class_name")
	rows := sqlmock.NewRows(columns).
		AddRow("r1", "c1", "s1", date, "present", time.Now(), time.Now(), "Alice Chen", "Math 101")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.id, a.class_id, a.student_id, a.date, a.status")).
		WithArgs("t1", "c1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("t1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	details, total, err := repo.ListDetails(context.Background(), models.AttendanceRecordFilter{
		TeacherID: "t1",
		ClassID:   "c1",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "Alice Chen", details[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}
