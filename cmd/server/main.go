// @title winelist OCR import API
// @version 1.0
// @description Imports restaurant wine lists from scanned menus.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"winelist/internal/config"
	"winelist/internal/extractor"
	_ "winelist/internal/extractor/claude"
	_ "winelist/internal/extractor/gemini"
	_ "winelist/internal/extractor/openai"
	"winelist/internal/handler"
	"winelist/internal/ocr"
	"winelist/internal/ocr/vision"
	"winelist/internal/repository/postgres"
	"winelist/internal/router"
	"winelist/internal/ruleparser"
	"winelist/internal/service"
	"winelist/internal/storage/gcs"
	s3storage "winelist/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	restaurantRepo := postgres.NewRestaurantRepo(db)
	jobRepo := postgres.NewImportJobRepo(db)
	itemRepo := postgres.NewImportItemRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	staging, err := gcs.NewStore(ctx, vision.ClientOptions(&cfg.Vision, cfg.Vision.StorageEndpoint)...)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR staging bucket client: %w", err)
	}

	// Initialize OCR
	annotator, err := vision.NewAnnotator(ctx, vision.ClientOptions(&cfg.Vision, cfg.Vision.Endpoint)...)
	if err != nil {
		return fmt.Errorf("failed to initialize vision client: %w", err)
	}
	acquirer := ocr.NewAcquirer(annotator, staging, ocr.OptionsFromConfig(&cfg.Vision))

	// Initialize extraction
	llm, err := extractor.NewFromConfig(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM extractor: %w", err)
	}
	if llm == nil {
		log.Printf("LLM extraction disabled, using rule parser only")
	}
	pipeline := extractor.NewPipeline(llm, cfg.Import.ChunkChars, cfg.Import.OverlapLines)
	rules := ruleparser.New(ruleparser.RulesFromConfig(&cfg.Rules))

	// Initialize services
	if cfg.JWT.Secret == "" {
		log.Printf("WINELIST_JWT_SECRET is not set, every authenticated request will be rejected")
	}
	authSvc := service.NewAuthService(&cfg.JWT)
	importSvc := service.NewImportService(
		restaurantRepo, jobRepo, itemRepo, s3Client, acquirer, rules, pipeline,
		service.ImportOptions{
			PersistLimit:  cfg.Import.PersistLimit,
			PreviewChars:  cfg.Import.PreviewChars,
			ExportBucket:  cfg.S3.ExportBucket,
			PresignExpiry: cfg.S3.PresignExpiry,
		},
	)

	// Initialize handlers
	importH := handler.NewImportHandler(importSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, importH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
