package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/pkg/response"
)

// AdminHandler handles administrative endpoints
type AdminHandler struct {
	dataset *service.DatasetService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(dataset *service.DatasetService) *AdminHandler {
	return &AdminHandler{dataset: dataset}
}

// Reload handles POST /api/v1/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	if err := h.dataset.Reload(c.Request.Context()); err != nil {
		response.ErrorWithCause(c, http.StatusInternalServerError, "dataset reload failed", err)
		return
	}
	response.Success(c, gin.H{
		"features": len(h.dataset.Features().Features),
	})
}
