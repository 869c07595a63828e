package models

import (
	"time"

	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// Course is a training course offered on the platform.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Level       int       `db:"level" json:"level"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter encapsulates allowed search parameters for listing courses.
type CourseFilter struct {
	pagination.PageRequest
	Search    string
	Level     *int
	Published *bool
	Active    *bool
}

// ActiveCourse is the trimmed projection used by the course picker.
type ActiveCourse struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"is_active" json:"active"`
}

// CourseCount groups course totals by activity state.
type CourseCount struct {
	Active bool `db:"is_active" json:"active"`
	Count  int  `db:"count" json:"count"`
}
