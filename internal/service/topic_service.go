package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// TagCourseTopics prefixes per-course topic listing cache keys.
const TagCourseTopics = "course-topics"

type topicRepository interface {
	ListByCourse(ctx context.Context, courseID string, req pagination.PageRequest) ([]models.Topic, int, error)
	FindByID(ctx context.Context, id string) (*models.Topic, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id string) error
}

type topicCourseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CreateTopicRequest holds payload for creating topics.
type CreateTopicRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=50"`
	YoutubeURL  string   `json:"youtube_url" validate:"required,url"`
	YoutubeID   string   `json:"youtube_id"`
	Description string   `json:"description"`
	Materials   []string `json:"materials" validate:"dive,url"`
}

// CheckTopicRequest is the pre-submit name availability check.
type CheckTopicRequest struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
}

type topicListPayload struct {
	Items []models.Topic `json:"items"`
	Total int            `json:"total"`
}

// TopicService handles topic use-cases.
type TopicService struct {
	repo      topicRepository
	courses   topicCourseLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTopicService constructs the topic service.
func NewTopicService(repo topicRepository, courses topicCourseLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TopicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicService{repo: repo, courses: courses, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// ListByCourse returns one page of a course's topics, pagination metadata
// and whether the page came from cache.
func (s *TopicService) ListByCourse(ctx context.Context, courseID string, req pagination.PageRequest) ([]models.Topic, *pagination.Meta, bool, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	key := fmt.Sprintf("%s:%s:%d:%d", TagCourseTopics, courseID, req.Page, req.PerPage)

	var payload topicListPayload
	if hit, _ := s.cache.Get(ctx, key, &payload); hit {
		return payload.Items, pagination.NewMeta(req, payload.Total), true, nil
	}

	start := time.Now()
	topics, total, err := s.repo.ListByCourse(ctx, courseID, req)
	s.metrics.ObserveDBQuery("topics_list_by_course", time.Since(start))
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list topics")
	}

	_ = s.cache.Set(ctx, key, topicListPayload{Items: topics, Total: total}, 0)

	return topics, pagination.NewMeta(req, total), false, nil
}

// Check reports whether the topic name is still available. Used by the
// add-topic form before submission.
func (s *TopicService) Check(ctx context.Context, req CheckTopicRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic name")
	}
	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check topic name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateName, "topic name already taken")
	}
	return nil
}

// Create adds a topic to a course. When the payload omits youtube_id it is
// derived from the last path segment of youtube_url, mirroring the form
// behaviour on the dashboard.
func (s *TopicService) Create(ctx context.Context, courseID string, req CreateTopicRequest) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid topic payload")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.Check(ctx, CheckTopicRequest{Name: req.Name}); err != nil {
		return nil, err
	}

	youtubeID := req.YoutubeID
	if youtubeID == "" {
		youtubeID = youtubeIDFromURL(req.YoutubeURL)
	}

	topic := &models.Topic{
		CourseID:    courseID,
		Name:        req.Name,
		YoutubeID:   youtubeID,
		YoutubeURL:  req.YoutubeURL,
		Description: req.Description,
		Materials:   pq.StringArray(req.Materials),
	}
	if err := s.repo.Create(ctx, topic); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create topic")
	}

	_ = s.cache.Invalidate(ctx, TagCourseTopics+":"+courseID+":*")
	return topic, nil
}

// Delete removes a topic.
func (s *TopicService) Delete(ctx context.Context, id string) error {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete topic")
	}

	_ = s.cache.Invalidate(ctx, TagCourseTopics+":"+topic.CourseID+":*")
	return nil
}

func youtubeIDFromURL(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
