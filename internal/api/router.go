package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/chronomap-backend-go/internal/config"
	"github.com/jengzang/chronomap-backend-go/internal/handler"
	"github.com/jengzang/chronomap-backend-go/internal/metrics"
	"github.com/jengzang/chronomap-backend-go/internal/middleware"
)

// Handlers bundles the handler set wired into the router
type Handlers struct {
	Features  *handler.FeatureHandler
	Popups    *handler.PopupHandler
	Summaries *handler.SummaryHandler
	Admin     *handler.AdminHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Chronomap Backend API is running",
		})
	})

	r.GET("/metrics", metrics.Handler())

	// 摘要代理限流：保护上游百科接口
	summaryLimiter := middleware.NewRateLimiter(5, 10)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 要素与聚合接口
		api.GET("/features", h.Features.GetFeatures)
		api.GET("/clusters", h.Features.GetClusters)
		api.GET("/clusters/:id/expansion", h.Features.GetExpansion)
		api.GET("/clusters/:id/leaves", h.Features.GetLeaves)
		api.GET("/points", h.Features.GetPointsAt)

		// 弹窗会话接口
		popups := api.Group("/popups")
		{
			popups.POST("", h.Popups.Open)
			popups.GET("/:id/pages/:index", h.Popups.GetPage)
			popups.DELETE("/:id", h.Popups.Close)
		}

		// 百科摘要接口
		api.GET("/summary/*title", summaryLimiter.Middleware(), h.Summaries.GetSummary)

		// 管理接口
		admin := api.Group("/admin", middleware.AdminAuth(cfg.JWTSecret))
		{
			admin.POST("/reload", h.Admin.Reload)
		}
	}

	return r
}
