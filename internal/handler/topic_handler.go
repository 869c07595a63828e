package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartconstruct/course-admin-api/internal/middleware"
	"github.com/smartconstruct/course-admin-api/internal/service"
	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
	"github.com/smartconstruct/course-admin-api/pkg/response"
)

// TopicHandler exposes topic endpoints nested under courses.
type TopicHandler struct {
	service *service.TopicService
	limits  pagination.Limits
}

// NewTopicHandler constructs a topic handler.
func NewTopicHandler(svc *service.TopicService, limits pagination.Limits) *TopicHandler {
	return &TopicHandler{service: svc, limits: limits}
}

// ListByCourse godoc
// @Summary List topics of a course
// @Tags Topics
// @Produce json
// @Param id path string true "Course ID"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/topics [get]
func (h *TopicHandler) ListByCourse(c *gin.Context) {
	req := h.limits.Parse(c.Request.URL.Query())
	topics, meta, cacheHit, err := h.service.ListByCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, topics, meta, middleware.ExtractMeta(c))
}

// Check godoc
// @Summary Check topic name availability
// @Tags Topics
// @Accept json
// @Produce json
// @Param payload body service.CheckTopicRequest true "Topic name"
// @Success 200 {object} response.Envelope
// @Router /topics/check [post]
func (h *TopicHandler) Check(c *gin.Context) {
	var req service.CheckTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Check(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"available": true}, nil)
}

// Create godoc
// @Summary Add topic to a course
// @Tags Topics
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.CreateTopicRequest true "Topic payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/topics [post]
func (h *TopicHandler) Create(c *gin.Context) {
	var req service.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	topic, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, topic)
}

// Delete godoc
// @Summary Delete topic
// @Tags Topics
// @Produce json
// @Param id path string true "Topic ID"
// @Success 204
// @Router /topics/{id} [delete]
func (h *TopicHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
