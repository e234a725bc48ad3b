package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/pkg/response"
)

// SummaryHandler handles HTTP requests for encyclopedia summaries
type SummaryHandler struct {
	service *service.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// GetSummary handles GET /api/v1/summary/*title
// Always succeeds: upstream failures return the degraded link-only form.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	title := strings.TrimPrefix(c.Param("title"), "/")
	if title == "" {
		response.BadRequest(c, "missing page title")
		return
	}

	summary := h.service.Get(c.Request.Context(), title, "")
	response.Success(c, summary)
}
