package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"docsight/internal/config"
	"docsight/internal/extractor"
	"docsight/internal/extractor/openai"
	"docsight/internal/extractor/openrouter"
	"docsight/internal/handler"
	"docsight/internal/raster"
	"docsight/internal/router"
	"docsight/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Optional .env file for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Register extraction providers
	registry := extractor.NewRegistry()
	registry.Register(openai.ProviderName, openai.NewExtractor(&cfg.Providers.OpenAI))
	registry.Register(openrouter.ProviderName, openrouter.NewExtractor(&cfg.Providers.OpenRouter))

	// Initialize services
	converter := raster.NewConverter(cfg.Raster.JPEGQuality)
	batchSvc := service.NewBatchService(registry, converter, cfg.Batch.Concurrency)

	// Initialize handlers
	modelsH := handler.NewModelsHandler(registry)
	ocrH := handler.NewOCRHandler(batchSvc)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, modelsH, ocrH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
