package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/pkg/cache"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
)

type mockCourseRepo struct {
	courses   map[string]models.Course
	listCalls int
	deleted   []string
	published []string
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.listCalls++
	var list []models.Course
	for _, c := range m.courses {
		list = append(list, c)
	}
	if list == nil {
		list = []models.Course{}
	}
	return list, len(m.courses), nil
}

func (m *mockCourseRepo) ListActive(ctx context.Context) ([]models.ActiveCourse, error) {
	var list []models.ActiveCourse
	for _, c := range m.courses {
		if c.IsActive {
			list = append(list, models.ActiveCourse{ID: c.ID, Name: c.Name, Description: c.Description, Active: true})
		}
	}
	return list, nil
}

func (m *mockCourseRepo) CountByActivity(ctx context.Context) ([]models.CourseCount, error) {
	counts := map[bool]int{}
	for _, c := range m.courses {
		counts[c.IsActive]++
	}
	var result []models.CourseCount
	for active, count := range counts {
		result = append(result, models.CourseCount{Active: active, Count: count})
	}
	return result, nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for _, c := range m.courses {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "new-course"
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) SetPublished(ctx context.Context, id string, published bool) error {
	if c, ok := m.courses[id]; ok {
		c.IsPublished = published
		m.courses[id] = c
	}
	m.published = append(m.published, id)
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newCourseServiceForTest(repo *mockCourseRepo) (*CourseService, *CacheService) {
	cacheSvc := NewCacheService(cache.NewMemory(time.Minute), nil, time.Minute, zap.NewNop(), true)
	return NewCourseService(repo, cacheSvc, nil, nil, zap.NewNop()), cacheSvc
}

func TestCourseServiceCreateDuplicateName(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1},
	}}
	svc, _ := newCourseServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Go Basics", Level: 1})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErr.Code)
}

func TestCourseServiceCreateValidatesPayload(t *testing.T) {
	svc, _ := newCourseServiceForTest(&mockCourseRepo{})

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "ab", Level: 1})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCourseServiceUpdateKeepsOwnName(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1, IsActive: true},
	}}
	svc, _ := newCourseServiceForTest(repo)

	course, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Name: "Go Basics", Level: 2, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, 2, course.Level)
}

func TestCourseServiceUpdateRejectsTakenName(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1},
		"c2": {ID: "c2", Name: "Docker Deep Dive", Level: 2},
	}}
	svc, _ := newCourseServiceForTest(repo)

	_, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Name: "Docker Deep Dive", Level: 1})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDuplicateName.Code, appErr.Code)
}

func TestCourseServiceListUsesCacheUntilMutation(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1, IsActive: true},
	}}
	svc, _ := newCourseServiceForTest(repo)
	filter := models.CourseFilter{PageRequest: pagination.PageRequest{Page: 1, PerPage: 10}}

	_, _, cacheHit, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	_, _, cacheHit, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(context.Background(), CreateCourseRequest{Name: "Docker Deep Dive", Level: 2})
	require.NoError(t, err)

	_, meta, cacheHit, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, 2, meta.TotalCount)
}

func TestCourseServiceListObservesDBQueries(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1, IsActive: true},
	}}
	metrics := NewMetricsService()
	cacheSvc := NewCacheService(cache.NewMemory(time.Minute), metrics, time.Minute, zap.NewNop(), true)
	svc := NewCourseService(repo, cacheSvc, metrics, nil, zap.NewNop())
	filter := models.CourseFilter{PageRequest: pagination.PageRequest{Page: 1, PerPage: 10}}

	_, _, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)

	// cache hit must not count as a database query
	_, _, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), metrics.Snapshot().DBQueryCount)
}

func TestCourseServiceDeleteInvalidatesTopicListings(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"c1": {ID: "c1", Name: "Go Basics", Level: 1},
	}}
	svc, cacheSvc := newCourseServiceForTest(repo)

	key := TagCourseTopics + ":c1:1:10"
	require.NoError(t, cacheSvc.Set(context.Background(), key, []string{"cached"}, 0))

	require.NoError(t, svc.Delete(context.Background(), "c1"))

	var stale []string
	hit, err := cacheSvc.Get(context.Background(), key, &stale)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"c1"}, repo.deleted)
}

func TestCourseServiceDeleteMissing(t *testing.T) {
	svc, _ := newCourseServiceForTest(&mockCourseRepo{})

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
