package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

func topicRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "course_id", "name", "youtube_id", "youtube_url", "description", "materials", "created_at", "updated_at"})
	for i := 0; i < n; i++ {
		rows.AddRow("id", "course-1", "Topic", "abc123", "https://youtu.be/abc123", "Desc", pq.StringArray{}, time.Now(), time.Now())
	}
	return rows
}

func TestTopicRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, name, youtube_id, youtube_url, description, materials, created_at, updated_at\n        FROM topics WHERE course_id = $1 ORDER BY name ASC LIMIT 10 OFFSET 0")).
		WithArgs("course-1").
		WillReturnRows(topicRows(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM topics WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	topics, total, err := repo.ListByCourse(context.Background(), "course-1", pagination.PageRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, topics, 4)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectExec("INSERT INTO topics").
		WillReturnResult(sqlmock.NewResult(1, 1))

	topic := &models.Topic{
		CourseID:   "course-1",
		Name:       "Intro",
		YoutubeID:  "abc123",
		YoutubeURL: "https://youtu.be/abc123",
		Materials:  pq.StringArray{"https://example.com/slides.pdf"},
	}
	err := repo.Create(context.Background(), topic)
	require.NoError(t, err)
	assert.NotEmpty(t, topic.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newCourseMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM topics WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
