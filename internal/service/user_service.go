package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

// UserDirectory is the read-only identity-provider collaborator. List
// implementations must return projected records only; nothing sensitive
// crosses this interface.
type UserDirectory interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]models.UserProfile, error)
}

// UserService exposes the directory user listing to the dashboard.
type UserService struct {
	directory UserDirectory
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(directory UserDirectory, metrics *MetricsService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{directory: directory, metrics: metrics, logger: logger}
}

// List returns one window of directory users and pagination metadata.
// The count and the page fetch are independent provider calls; the count
// always reflects the whole directory. When the page fetch fails after a
// successful count the listing degrades to an empty page (the handler
// surfaces an error indicator) instead of failing the whole render.
func (s *UserService) List(ctx context.Context, req pagination.PageRequest) ([]models.UserProfile, *pagination.Meta, bool, error) {
	start := time.Now()
	total, err := s.directory.Count(ctx)
	if s.metrics != nil {
		s.metrics.ObserveDirectoryRequest("count", time.Since(start))
	}
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	start = time.Now()
	users, err := s.directory.List(ctx, req.PerPage, req.Offset())
	if s.metrics != nil {
		s.metrics.ObserveDirectoryRequest("list", time.Since(start))
	}
	if err != nil {
		s.logger.Warn("user page fetch failed, degrading to empty state", zap.Error(err))
		return []models.UserProfile{}, pagination.NewMeta(req, total), true, nil
	}

	return users, pagination.NewMeta(req, total), false, nil
}
