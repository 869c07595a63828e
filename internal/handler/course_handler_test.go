package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/internal/service"
	"github.com/smartconstruct/course-admin-api/pkg/cache"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

type courseRepoStub struct {
	courses    []models.Course
	lastFilter models.CourseFilter
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	s.lastFilter = filter
	return s.courses, len(s.courses), nil
}

func (s *courseRepoStub) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	return []models.ActiveCourse{}, nil
}

func (s *courseRepoStub) CountByActivity(ctx context.Context) ([]models.CourseCount, error) {
	return []models.CourseCount{}, nil
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for _, c := range s.courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for _, c := range s.courses {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = "new-course"
	s.courses = append(s.courses, *course)
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error { return nil }

func (s *courseRepoStub) SetPublished(ctx context.Context, id string, published bool) error {
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, id string) error {
	for i, c := range s.courses {
		if c.ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Pagination *pagination.Meta       `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func newCourseHandlerForTest(repo *courseRepoStub) *CourseHandler {
	cacheSvc := service.NewCacheService(cache.NewMemory(time.Minute), nil, time.Minute, zap.NewNop(), true)
	return NewCourseHandler(service.NewCourseService(repo, cacheSvc, nil, nil, zap.NewNop()), pagination.Limits{})
}

func TestCourseHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{courses: []models.Course{{ID: "c1", Name: "Go Basics", Level: 1}}}
	handler := newCourseHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses?page=2&per_page=5&search=go&level=3&published=true&sort=level&order=desc", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 5, repo.lastFilter.PerPage)
	assert.Equal(t, "go", repo.lastFilter.Search)
	require.NotNil(t, repo.lastFilter.Level)
	assert.Equal(t, 3, *repo.lastFilter.Level)
	require.NotNil(t, repo.lastFilter.Published)
	assert.True(t, *repo.lastFilter.Published)
	assert.Nil(t, repo.lastFilter.Active)
	assert.Equal(t, "level", repo.lastFilter.Sort)
	assert.Equal(t, "desc", repo.lastFilter.Order)
}

func TestCourseHandlerListMalformedPagingFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{}
	handler := newCourseHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses?page=zero&per_page=9999", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, pagination.MaxPerPage, repo.lastFilter.PerPage)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 1, body.Pagination.Page)
}

func TestCourseHandlerListReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{courses: []models.Course{{ID: "c1", Name: "Go Basics", Level: 1}}}
	handler := newCourseHandlerForTest(repo)

	listOnce := func() envelope {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest(http.MethodGet, "/courses", nil)
		c.Request = req
		handler.List(c)
		require.Equal(t, http.StatusOK, w.Code)
		var body envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	first := listOnce()
	require.NotNil(t, first.Meta)
	assert.Equal(t, false, first.Meta["cache_hit"])

	second := listOnce()
	require.NotNil(t, second.Meta)
	assert.Equal(t, true, second.Meta["cache_hit"])
}

func TestCourseHandlerListHonorsConfiguredLimits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{}
	cacheSvc := service.NewCacheService(cache.NewMemory(time.Minute), nil, time.Minute, zap.NewNop(), true)
	handler := NewCourseHandler(
		service.NewCourseService(repo, cacheSvc, nil, nil, zap.NewNop()),
		pagination.Limits{DefaultPerPage: 20, MaxPerPage: 40},
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses?per_page=500", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, repo.lastFilter.PerPage)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, "/courses", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, repo.lastFilter.PerPage)
}

func TestCourseHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCourseHandlerForTest(&courseRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerCreateDuplicateName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{courses: []models.Course{{ID: "c1", Name: "Go Basics", Level: 1}}}
	handler := newCourseHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(`{"name":"Go Basics","level":1}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "DUPLICATE_NAME", body.Error.Code)
}

func TestCourseHandlerGetMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCourseHandlerForTest(&courseRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &courseRepoStub{courses: []models.Course{{ID: "c1", Name: "Go Basics", Level: 1}}}
	handler := newCourseHandlerForTest(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/courses/c1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.courses)
}
