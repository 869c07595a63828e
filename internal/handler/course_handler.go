package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartconstruct/course-admin-api/internal/middleware"
	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/internal/service"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
	"github.com/smartconstruct/course-admin-api/pkg/response"
)

// CourseHandler exposes course CRUD and listing endpoints.
type CourseHandler struct {
	service *service.CourseService
	limits  pagination.Limits
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc *service.CourseService, limits pagination.Limits) *CourseHandler {
	return &CourseHandler{service: svc, limits: limits}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Param sort query string false "Sort column (name, level, created_at)"
// @Param order query string false "Sort order (asc, desc)"
// @Param search query string false "Search keyword"
// @Param level query int false "Filter by level"
// @Param published query bool false "Filter by published state"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := h.courseFilterFromQuery(c)

	courses, meta, cacheHit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, courses, meta, middleware.ExtractMeta(c))
}

// ListActive godoc
// @Summary List active courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/active [get]
func (h *CourseHandler) ListActive(c *gin.Context) {
	courses, cacheHit, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, courses, nil, middleware.ExtractMeta(c))
}

// Count godoc
// @Summary Count courses by activity state
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/count [get]
func (h *CourseHandler) Count(c *gin.Context) {
	counts, cacheHit, err := h.service.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, counts, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Publish godoc
// @Summary Publish course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/publish [post]
func (h *CourseHandler) Publish(c *gin.Context) {
	if err := h.service.Publish(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"published": true}, nil)
}

// Delete godoc
// @Summary Delete course and its topics
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CourseHandler) courseFilterFromQuery(c *gin.Context) models.CourseFilter {
	filter := models.CourseFilter{PageRequest: h.limits.Parse(c.Request.URL.Query())}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			filter.Level = &level
		}
	}
	if raw := c.Query("published"); raw != "" {
		if published, err := strconv.ParseBool(raw); err == nil {
			filter.Published = &published
		}
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	return filter
}
