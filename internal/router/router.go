package router

import (
	"github.com/gin-gonic/gin"

	"docsight/internal/config"
	"docsight/internal/handler"
	"docsight/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	modelsH *handler.ModelsHandler,
	ocrH *handler.OCRHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check
	r.GET("/healthz", healthH.Liveness)

	r.GET("/models/:provider", modelsH.List)
	r.POST("/ocr", ocrH.Process)

	return r
}
