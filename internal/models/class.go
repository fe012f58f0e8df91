package models

import "time"

// Class represents a class owned by a teacher account. Students and
// attendance rows cascade on delete at the database level.
type Class struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TeacherID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ClassCard extends Class with the dashboard aggregates: roster size and the
// number of distinct dates with at least one attendance row.
type ClassCard struct {
	Class
	StudentCount   int `db:"student_count" json:"student_count"`
	TotalClassDays int `db:"total_class_days" json:"total_class_days"`
}
