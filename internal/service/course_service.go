package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// Cache tags for course listings. Every successful mutation invalidates
// all three; reads may be served from cache within the staleness window.
const (
	TagAllCourses    = "all-courses"
	TagActiveCourses = "active-courses"
	TagCoursesCount  = "courses-count"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListActive(ctx context.Context) ([]models.ActiveCourse, error)
	CountByActivity(ctx context.Context) ([]models.CourseCount, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Level       int    `json:"level" validate:"required"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
}

// UpdateCourseRequest holds payload for updating courses.
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=50"`
	Level       int    `json:"level" validate:"required"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
	IsActive    bool   `json:"is_active"`
}

type courseListPayload struct {
	Items []models.Course `json:"items"`
	Total int             `json:"total"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns one page of courses, pagination metadata and whether the
// page came from cache. Reads are served from the listing cache when a
// fresh entry exists; the cache key encodes the whole query shape so
// distinct filters never collide.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *pagination.Meta, bool, error) {
	key := courseListKey(filter)

	var payload courseListPayload
	if hit, _ := s.cache.Get(ctx, key, &payload); hit {
		return payload.Items, pagination.NewMeta(filter.PageRequest, payload.Total), true, nil
	}

	start := time.Now()
	courses, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("courses_list", time.Since(start))
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	_ = s.cache.Set(ctx, key, courseListPayload{Items: courses, Total: total}, 0)

	return courses, pagination.NewMeta(filter.PageRequest, total), false, nil
}

// ListActive returns the active-course projection and whether it came
// from cache.
func (s *CourseService) ListActive(ctx context.Context) ([]models.ActiveCourse, bool, error) {
	var courses []models.ActiveCourse
	if hit, _ := s.cache.Get(ctx, TagActiveCourses, &courses); hit {
		return courses, true, nil
	}

	start := time.Now()
	courses, err := s.repo.ListActive(ctx)
	s.metrics.ObserveDBQuery("courses_list_active", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active courses")
	}

	_ = s.cache.Set(ctx, TagActiveCourses, courses, 0)
	return courses, false, nil
}

// Count returns course totals grouped by activity state and whether they
// came from cache.
func (s *CourseService) Count(ctx context.Context) ([]models.CourseCount, bool, error) {
	var counts []models.CourseCount
	if hit, _ := s.cache.Get(ctx, TagCoursesCount, &counts); hit {
		return counts, true, nil
	}

	start := time.Now()
	counts, err := s.repo.CountByActivity(ctx)
	s.metrics.ObserveDBQuery("courses_count", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}

	_ = s.cache.Set(ctx, TagCoursesCount, counts, 0)
	return counts, false, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course. The name check is a user-facing fast
// path; the unique index behind repo.Create is authoritative under
// concurrent submissions.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "course name already taken")
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		IsPublished: req.IsPublished,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidate(ctx)
	return course, nil
}

// Update modifies an existing course. The uniqueness check excludes the
// course's own id, so renaming a course to its current name succeeds.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateName, "course name already taken")
	}

	course.Name = req.Name
	course.Description = req.Description
	course.Level = req.Level
	course.IsPublished = req.IsPublished
	course.IsActive = req.IsActive
	if err := s.repo.Update(ctx, course); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidate(ctx)
	return course, nil
}

// Publish marks a course as published.
func (s *CourseService) Publish(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetPublished(ctx, id, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish course")
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a course and cascades to its topics.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidate(ctx)
	_ = s.cache.Invalidate(ctx, TagCourseTopics+":"+id+":*")
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	for _, tag := range []string{TagAllCourses + ":*", TagActiveCourses, TagCoursesCount} {
		_ = s.cache.Invalidate(ctx, tag)
	}
}

func courseListKey(filter models.CourseFilter) string {
	level := "-"
	if filter.Level != nil {
		level = fmt.Sprintf("%d", *filter.Level)
	}
	published := "-"
	if filter.Published != nil {
		published = fmt.Sprintf("%t", *filter.Published)
	}
	active := "-"
	if filter.Active != nil {
		active = fmt.Sprintf("%t", *filter.Active)
	}
	return fmt.Sprintf("%s:%d:%d:%s:%s:%s:%s:%s:%s",
		TagAllCourses, filter.Page, filter.PerPage, filter.Sort, filter.Order,
		filter.Search, level, published, active)
}
