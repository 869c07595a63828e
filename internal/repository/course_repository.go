package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
)

const pgUniqueViolation = "23505"

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns one page of courses matching the filters plus the total
// count of the whole filtered set. The count runs as its own query over
// the same WHERE clause; it never depends on the fetched page length.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Level != nil {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, *filter.Level)
	}
	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("is_published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "name",
		"level":      "level",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.Sort]
	if !ok {
		// name ascending keeps pagination deterministic across requests
		column = "name"
	}
	order := strings.ToUpper(filter.Order)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, name, description, level, is_published, is_active, created_at, updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListActive returns the trimmed projection of active courses, name
// ascending.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	const query = `SELECT id, name, description, is_active FROM courses WHERE is_active = true ORDER BY name ASC`
	var courses []models.ActiveCourse
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// CountByActivity groups course totals by activity state.
func (r *CourseRepository) CountByActivity(ctx context.Context) ([]models.CourseCount, error) {
	const query = `SELECT is_active, COUNT(*) AS count FROM courses GROUP BY is_active`
	var counts []models.CourseCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count courses by activity: %w", err)
	}
	return counts, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, description, level, is_published, is_active, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByName checks whether a course with the exact name exists,
// optionally excluding an ID so updates can keep their own name.
func (r *CourseRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE name = $1"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check course name: %w", err)
	}
	return true, nil
}

// Create inserts a new course. The unique index on name is authoritative
// for duplicates; a constraint violation surfaces as ErrDuplicateName.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, name, description, level, is_published, is_active, created_at, updated_at)
        VALUES (:id, :name, :description, :level, :is_published, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicateName, "course name already taken")
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, description = :description, level = :level, is_published = :is_published, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicateName, "course name already taken")
		}
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SetPublished flips the published flag.
func (r *CourseRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE courses SET is_published = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, published, time.Now().UTC()); err != nil {
		return fmt.Errorf("publish course: %w", err)
	}
	return nil
}

// Delete removes a course and all of its topics in one transaction so no
// orphaned topics can survive the course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE course_id = $1`, id); err != nil {
		return fmt.Errorf("delete course topics: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete course: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
