// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"penomoran/internal/core/audit"
	"penomoran/internal/core/calendar"
	"penomoran/internal/core/numerator"
	"penomoran/internal/infrastructure/http/v1/handlers"
	"penomoran/internal/infrastructure/http/v1/middleware"
	"penomoran/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool backs the readiness probe
	Pool handlers.DBPinger

	// JWTValidator verifies portal tokens. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	Counters  numerator.Allocator
	Documents handlers.DocumentService
	Stats     handlers.StatsService

	// Legacy is optional; its routes are only mounted when set.
	Legacy handlers.LegacyNumerator

	Audit audit.Recorder
	Hijri calendar.HijriStrategy

	// Clock defaults to time.Now
	Clock func() time.Time
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	if cfg.Pool != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Pool)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
		}
	}

	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	base := handlers.NewBaseHandler(cfg.Clock)

	numbers := handlers.NewNumberHandler(base, cfg.Hijri)
	api.POST("/numbers/format", numbers.Format)
	api.GET("/numbers/parse", numbers.Parse)

	if cfg.Counters != nil {
		counters := handlers.NewCounterHandler(base, cfg.Counters, cfg.Audit)
		group := api.Group("/counters")
		{
			group.POST("/allocate", counters.Allocate)
			group.GET("/current", counters.Current)
			group.GET("/preview", counters.Preview)
		}
	}

	if cfg.Documents != nil {
		docs := handlers.NewDocumentHandler(base, cfg.Documents)
		api.POST("/letters", docs.IssueLetter)
		api.GET("/documents", docs.GetByNumber)
		api.GET("/documents/:id", docs.Get)
		api.POST("/documents/:id/number", docs.AttachNumber)
	}

	if cfg.Stats != nil {
		stats := handlers.NewStatsHandler(base, cfg.Stats)
		group := api.Group("/stats")
		{
			group.GET("/counters", stats.List)
			group.GET("/counters/:id", stats.Get)
		}
	}

	if cfg.Legacy != nil {
		legacy := handlers.NewLegacyHandler(base, cfg.Legacy, cfg.Audit)
		group := api.Group("/legacy/letter-numbers")
		{
			group.GET("/preview", legacy.Preview)
			group.POST("", legacy.Generate)
		}
	}

	return router
}
