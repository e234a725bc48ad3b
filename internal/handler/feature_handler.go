package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/chronomap-backend-go/internal/models"
	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/pkg/response"
)

// FeatureHandler handles HTTP requests for features and clusters
type FeatureHandler struct {
	service *service.DatasetService
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(service *service.DatasetService) *FeatureHandler {
	return &FeatureHandler{service: service}
}

// GetFeatures handles GET /api/v1/features
func (h *FeatureHandler) GetFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Features())
}

// GetClusters handles GET /api/v1/clusters?bbox=w,s,e,n&zoom=z
func (h *FeatureHandler) GetClusters(c *gin.Context) {
	bbox, err := parseBBox(c.DefaultQuery("bbox", "-180,-85,180,85"))
	if err != nil {
		response.BadRequest(c, "invalid bbox parameter")
		return
	}

	zoom, err := strconv.Atoi(c.DefaultQuery("zoom", "0"))
	if err != nil || zoom < 0 {
		response.BadRequest(c, "invalid zoom parameter")
		return
	}

	nodes := h.service.Clusters(bbox, zoom)
	response.Success(c, gin.H{
		"nodes": nodes,
		"count": len(nodes),
		"zoom":  zoom,
	})
}

// GetExpansion handles GET /api/v1/clusters/:id/expansion
func (h *FeatureHandler) GetExpansion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid cluster id")
		return
	}

	exp, err := h.service.Expansion(uint32(id))
	if err != nil {
		response.ErrorWithCause(c, http.StatusNotFound, "cluster not found", err)
		return
	}
	response.Success(c, exp)
}

// GetLeaves handles GET /api/v1/clusters/:id/leaves?limit=&offset=
func (h *FeatureHandler) GetLeaves(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid cluster id")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leaves, err := h.service.Leaves(uint32(id), limit, offset)
	if err != nil {
		response.ErrorWithCause(c, http.StatusNotFound, "cluster not found", err)
		return
	}
	response.Success(c, gin.H{
		"leaves": leaves,
		"count":  len(leaves),
		"offset": offset,
	})
}

// GetPointsAt handles GET /api/v1/points?lat=&lon=&zoom=
func (h *FeatureHandler) GetPointsAt(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		response.BadRequest(c, "invalid lat parameter")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		response.BadRequest(c, "invalid lon parameter")
		return
	}
	zoom, err := strconv.Atoi(c.DefaultQuery("zoom", "15"))
	if err != nil {
		response.BadRequest(c, "invalid zoom parameter")
		return
	}

	hits := h.service.PointsAt(lat, lon, zoom)
	response.Success(c, gin.H{
		"features": hits,
		"count":    len(hits),
	})
}

// parseBBox 解析 "west,south,east,north"
func parseBBox(raw string) (models.BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return models.BBox{}, strconv.ErrSyntax
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BBox{}, err
		}
		vals[i] = v
	}
	return models.BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}, nil
}
