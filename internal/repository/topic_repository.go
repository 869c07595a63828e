package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// TopicRepository manages persistence for topic records.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository constructs a TopicRepository.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// ListByCourse returns one page of a course's topics, name ascending, plus
// the total topic count for that course.
func (r *TopicRepository) ListByCourse(ctx context.Context, courseID string, req pagination.PageRequest) ([]models.Topic, int, error) {
	query := fmt.Sprintf(`SELECT id, course_id, name, youtube_id, youtube_url, description, materials, created_at, updated_at
        FROM topics WHERE course_id = $1 ORDER BY name ASC LIMIT %d OFFSET %d`, req.PerPage, req.Offset())

	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query, courseID); err != nil {
		return nil, 0, fmt.Errorf("list topics: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM topics WHERE course_id = $1`, courseID); err != nil {
		return nil, 0, fmt.Errorf("count topics: %w", err)
	}
	return topics, total, nil
}

// FindByID fetches a topic by ID.
func (r *TopicRepository) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	const query = `SELECT id, course_id, name, youtube_id, youtube_url, description, materials, created_at, updated_at FROM topics WHERE id = $1`
	var topic models.Topic
	if err := r.db.GetContext(ctx, &topic, query, id); err != nil {
		return nil, err
	}
	return &topic, nil
}

// ExistsByName checks whether a topic with the exact name exists.
func (r *TopicRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM topics WHERE name = $1 LIMIT 1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check topic name: %w", err)
	}
	return true, nil
}

// Create inserts a new topic under its owning course.
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = now
	}
	topic.UpdatedAt = now
	const query = `INSERT INTO topics (id, course_id, name, youtube_id, youtube_url, description, materials, created_at, updated_at)
        VALUES (:id, :course_id, :name, :youtube_id, :youtube_url, :description, :materials, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, topic); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicateName, "topic name already taken")
		}
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

// Delete removes a single topic.
func (r *TopicRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete topic rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
