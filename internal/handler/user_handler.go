package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartconstruct/course-admin-api/internal/middleware"
	"github.com/smartconstruct/course-admin-api/internal/models"
	"github.com/smartconstruct/course-admin-api/internal/service"
	"github.com/smartconstruct/course-admin-api/pkg/pagination"
	"github.com/smartconstruct/course-admin-api/pkg/response"
)

// UserHandler exposes the directory user listing.
type UserHandler struct {
	service *service.UserService
	limits  pagination.Limits
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService, limits pagination.Limits) *UserHandler {
	return &UserHandler{service: svc, limits: limits}
}

// List godoc
// @Summary List directory users
// @Tags Users
// @Produce json
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	req := h.limits.Parse(c.Request.URL.Query())

	users, meta, degraded, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if users == nil {
		users = []models.UserProfile{}
	}
	if degraded {
		middleware.SetErrorIndicator(c, "user directory temporarily unavailable")
	}
	response.JSON(c, http.StatusOK, users, meta, middleware.ExtractMeta(c))
}
