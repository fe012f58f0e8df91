package models

import "time"

// AttendanceStatus is the tri-state marking for one student on one date.
// Only Present and Absent are ever persisted; Unmarked means no row exists
// for the (student, date) pair.
type AttendanceStatus string

const (
	AttendanceStatusUnmarked AttendanceStatus = "unmarked"
	AttendanceStatusPresent  AttendanceStatus = "present"
	AttendanceStatusAbsent   AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported tri-state value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusUnmarked, AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Persistable reports whether the status corresponds to a stored row.
func (s AttendanceStatus) Persistable() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// AttendanceRecord is a persisted attendance row. At most one row exists per
// (student_id, date).
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceEntry is one line of the derived per-date view: a roster student
// together with whatever row exists for the date. RecordID is empty while the
// student is unmarked.
type AttendanceEntry struct {
	StudentID    string           `json:"student_id"`
	StudentName  string           `json:"student_name"`
	StudentEmail string           `json:"student_email"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
	RecordID     string           `json:"record_id,omitempty"`
}

// AttendanceView is the complete mutable view for one (class, date)
// selection: exactly one entry per roster student, in roster order.
type AttendanceView struct {
	ClassID string            `json:"class_id"`
	Date    string            `json:"date"`
	Entries []AttendanceEntry `json:"entries"`
}

// AttendanceSummary folds the view into present/absent/unmarked totals.
type AttendanceSummary struct {
	Present  int `json:"present"`
	Absent   int `json:"absent"`
	Unmarked int `json:"unmarked"`
	Total    int `json:"total"`
}

// AttendanceRecordDetail joins a row with student and class names for the
// records browser and exports.
type AttendanceRecordDetail struct {
	AttendanceRecord
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
}

// AttendanceRecordFilter scopes record listing queries.
type AttendanceRecordFilter struct {
	TeacherID string
	ClassID   string
	StudentID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
