package models

import (
	"time"

	"github.com/lib/pq"
)

// Topic is a single lesson inside a course, backed by a YouTube video and
// optional supporting materials. A topic is owned by exactly one course and
// is removed when that course is deleted.
type Topic struct {
	ID          string         `db:"id" json:"id"`
	CourseID    string         `db:"course_id" json:"course_id"`
	Name        string         `db:"name" json:"name"`
	YoutubeID   string         `db:"youtube_id" json:"youtube_id"`
	YoutubeURL  string         `db:"youtube_url" json:"youtube_url"`
	Description string         `db:"description" json:"description"`
	Materials   pq.StringArray `db:"materials" json:"materials"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
