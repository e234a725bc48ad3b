package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/jengzang/chronomap-backend-go/internal/api"
	"github.com/jengzang/chronomap-backend-go/internal/config"
	"github.com/jengzang/chronomap-backend-go/internal/database"
	"github.com/jengzang/chronomap-backend-go/internal/handler"
	"github.com/jengzang/chronomap-backend-go/internal/logging"
	"github.com/jengzang/chronomap-backend-go/internal/metrics"
	"github.com/jengzang/chronomap-backend-go/internal/popup"
	"github.com/jengzang/chronomap-backend-go/internal/repository"
	"github.com/jengzang/chronomap-backend-go/internal/service"
	"github.com/jengzang/chronomap-backend-go/internal/state"
	"github.com/jengzang/chronomap-backend-go/internal/wiki"
)

func main() {
	// 加载配置
	cfg := config.Load()

	if err := logging.Init(cfg.Debug); err != nil {
		panic(err)
	}
	defer logging.Sync()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		zap.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	collector := metrics.NewCollector(nil)
	appState := state.New()

	// 组装服务
	datasetService := service.NewDatasetService(appState, collector, cfg.DatasetSource)
	summaryRepo := repository.NewSummaryRepository(database.GetDB())
	wikiClient := wiki.NewClient(wiki.Options{BaseURL: cfg.WikiBaseURL})
	summaryService := service.NewSummaryService(summaryRepo, wikiClient, collector, cfg.SummaryTTL)
	popupService := service.NewPopupService(popup.NewStore(cfg.PopupTTL), datasetService, summaryService, collector)

	// 首次加载数据集：失败时保持空集合，服务继续运行
	ctx := context.Background()
	if err := datasetService.Reload(ctx); err != nil {
		zap.L().Error("initial dataset load failed, serving empty collection", zap.Error(err))
	} else {
		go summaryService.Prewarm(ctx, datasetService.Features(), cfg.PrewarmCount)
	}

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Features:  handler.NewFeatureHandler(datasetService),
		Popups:    handler.NewPopupHandler(popupService),
		Summaries: handler.NewSummaryHandler(summaryService),
		Admin:     handler.NewAdminHandler(datasetService),
	})

	// 启动服务器
	zap.L().Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		zap.L().Fatal("failed to start server", zap.Error(err))
	}
}
