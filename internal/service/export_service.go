package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/export"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
	"github.com/smartconstruct/course-admin-api/pkg/table"
)

// exportWindow bounds how many rows a single export fetches.
const exportWindow = 1000

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportService renders course and user tables to downloadable documents.
// Both row types flow through the same generic column schema.
type ExportService struct {
	courses *CourseService
	users   *UserService
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(courses *CourseService, users *UserService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{courses: courses, users: users, logger: logger}
}

// CourseColumns is the course table schema shared by exports and the
// dashboard table.
func CourseColumns() []table.Column[models.Course] {
	return []table.Column[models.Course]{
		{Key: "name", Title: "Name", Sortable: true, Render: func(c models.Course) string { return c.Name }},
		{Key: "level", Title: "Level", Sortable: true, Render: func(c models.Course) string { return strconv.Itoa(c.Level) }},
		{Key: "description", Title: "Description", Render: func(c models.Course) string { return c.Description }},
		{Key: "is_published", Title: "Published", Render: func(c models.Course) string { return strconv.FormatBool(c.IsPublished) }},
		{Key: "is_active", Title: "Active", Render: func(c models.Course) string { return strconv.FormatBool(c.IsActive) }},
		{Key: "created_at", Title: "Created", Sortable: true, Render: func(c models.Course) string { return c.CreatedAt.Format("2006-01-02") }},
	}
}

// UserColumns is the directory user table schema. Accessors fall back to
// empty strings for absent optional fields.
func UserColumns() []table.Column[models.UserProfile] {
	return []table.Column[models.UserProfile]{
		{Key: "name", Title: "User", Render: func(u models.UserProfile) string { return u.DisplayName() }},
		{Key: "email", Title: "Email", Render: func(u models.UserProfile) string { return u.Email }},
		{Key: "level", Title: "Level", Render: func(u models.UserProfile) string { return strconv.Itoa(u.Level) }},
		{Key: "last_sign_in_at", Title: "Last Signed In", Render: func(u models.UserProfile) string {
			if u.LastSignInAt == nil {
				return ""
			}
			return u.LastSignInAt.Format("2006-01-02 15:04")
		}},
	}
}

// Courses renders the course table in the requested format.
func (s *ExportService) Courses(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	filter := models.CourseFilter{PageRequest: pagination.PageRequest{Page: 1, PerPage: exportWindow}}
	courses, meta, _, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	rendered := table.Render(CourseColumns(), pagination.PageResult[models.Course]{Items: courses, TotalCount: meta.TotalCount}, exportWindow)
	return s.render(rendered, format, "courses")
}

// Users renders the directory user table in the requested format.
func (s *ExportService) Users(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	users, meta, degraded, err := s.users.List(ctx, pagination.PageRequest{Page: 1, PerPage: exportWindow})
	if err != nil {
		return nil, "", err
	}
	if degraded {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "user directory unavailable")
	}

	rendered := table.Render(UserColumns(), pagination.PageResult[models.UserProfile]{Items: users, TotalCount: meta.TotalCount}, exportWindow)
	return s.render(rendered, format, "users")
}

func (s *ExportService) render(rendered table.Rendered, format ExportFormat, title string) ([]byte, string, error) {
	data := export.Table{Headers: rendered.Headers, Rows: rendered.Rows}

	switch format {
	case FormatCSV:
		payload, err := export.CSV(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case FormatPDF:
		payload, err := export.PDF(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
