package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/api/handlers"
	"github.com/yourusername/ncea-extract-go/api/middleware"
	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/internal/metrics"
)

// RouterDeps holds everything the HTTP router serves
type RouterDeps struct {
	// Context bounds the lifetime of batches started over HTTP
	Context  context.Context
	BatchMgr *app.BatchManager
	History  domain.RunRepository // nil when history is disabled
	Metrics  *metrics.Recorder
	LogsDir  string
	Logger   *zap.Logger
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.BatchMgr)
	router.GET("/health", healthHandler.Health)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		runHandler := handlers.NewRunHandler(ctx, deps.BatchMgr, deps.History, log)
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.StartRun)
			runs.GET("", runHandler.ListRuns)
			runs.GET("/:id", runHandler.GetRun)
			runs.GET("/:id/tasks", runHandler.GetRunTasks)
		}

		logHandler := handlers.NewLogHandler(deps.LogsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	return router
}
