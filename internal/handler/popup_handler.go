package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/pkg/response"
)

// PopupHandler handles HTTP requests for popup sessions
type PopupHandler struct {
	service *service.PopupService
}

// NewPopupHandler creates a new popup handler
func NewPopupHandler(service *service.PopupService) *PopupHandler {
	return &PopupHandler{service: service}
}

// OpenRequest is the body of POST /api/v1/popups. Coordinates are
// pointers so the zero value stays valid: lat 0 and lon 0 are real
// places, only absent fields are rejected.
type OpenRequest struct {
	Lat  *float64 `json:"lat" binding:"required"`
	Lon  *float64 `json:"lon" binding:"required"`
	Zoom *int     `json:"zoom"`
}

// Open handles POST /api/v1/popups
func (h *PopupHandler) Open(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	lat, lon := *req.Lat, *req.Lon
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		response.BadRequest(c, "coordinates out of range")
		return
	}
	zoom := 15
	if req.Zoom != nil {
		zoom = *req.Zoom
	}

	sess, err := h.service.Open(lat, lon, zoom)
	if err != nil {
		response.ErrorWithCause(c, http.StatusNotFound, "no features at location", err)
		return
	}
	response.Success(c, sess)
}

// GetPage handles GET /api/v1/popups/:id/pages/:index
func (h *PopupHandler) GetPage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid page index")
		return
	}

	page, err := h.service.RenderPage(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		if eris.Is(err, service.ErrSuperseded) {
			response.Error(c, http.StatusConflict, "page superseded")
			return
		}
		response.ErrorWithCause(c, http.StatusNotFound, "page not available", err)
		return
	}
	response.Success(c, page)
}

// Close handles DELETE /api/v1/popups/:id
func (h *PopupHandler) Close(c *gin.Context) {
	h.service.Close(c.Param("id"))
	response.Success(c, gin.H{"closed": true})
}
