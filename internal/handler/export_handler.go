package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartconstruct/course-admin-api/internal/service"
	"github.com/smartconstruct/course-admin-api/pkg/response"
)

// ExportHandler serves downloadable table exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Courses godoc
// @Summary Export the course table
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /courses/export [get]
func (h *ExportHandler) Courses(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	payload, contentType, err := h.service.Courses(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, payload, contentType, "courses", format)
}

// Users godoc
// @Summary Export the user table
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /users/export [get]
func (h *ExportHandler) Users(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	payload, contentType, err := h.service.Users(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, payload, contentType, "users", format)
}

func serveDownload(c *gin.Context, payload []byte, contentType, name string, format service.ExportFormat) {
	filename := name + "-" + time.Now().UTC().Format("20060102") + "." + string(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
