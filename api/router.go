package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/api/handlers"
	"github.com/yourusername/vidfetch-go/api/middleware"
	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// RouterConfig holds what SetupRouter wires together
type RouterConfig struct {
	DownloadMgr *app.DownloadManager
	Download    *domain.DownloadConfig
	Engine      handlers.EngineVersioner // optional, used by /ready
	Gatherer    prometheus.Gatherer      // optional, enables /metrics
	Events      *logger.MultiLogger      // optional
	Logger      *zap.Logger
}

// SetupRouter sets up the HTTP router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log, cfg.Events))

	healthHandler := handlers.NewHealthHandler(cfg.Engine)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	downloadHandler := handlers.NewDownloadHandler(cfg.DownloadMgr, cfg.Download.DefaultFormat, log)
	router.POST("/download/", downloadHandler.DownloadVideo)
	router.GET("/formats", downloadHandler.ListFormats)

	videoHandler := handlers.NewVideoHandler(cfg.Download.OutputDir)
	router.GET("/video/:video_name", videoHandler.GetVideo)

	wsHandler := handlers.NewProgressWebSocketHandler(cfg.DownloadMgr, cfg.Download.DefaultFormat, log)
	router.GET("/ws/download", wsHandler.HandleWebSocket)

	logHandler := handlers.NewLogHandler(cfg.Download.LogsDir)
	logs := router.Group("/logs")
	{
		logs.GET("/categories", logHandler.GetCategories)
		logs.GET("/:category", logHandler.GetLogs)
		logs.GET("/:category/search", logHandler.SearchLogs)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	})

	return router
}
