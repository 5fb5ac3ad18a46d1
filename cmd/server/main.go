package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/portfolio-content-api/internal/api"
	"github.com/portfolio-content-api/internal/auth"
	"github.com/portfolio-content-api/internal/cloudinary"
	"github.com/portfolio-content-api/internal/config"
	"github.com/portfolio-content-api/internal/mailer"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/portfolio-content-api/internal/service"
	"github.com/portfolio-content-api/pkg/logger"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting portfolio content API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize draft cache
	cache, closeCache, err := repository.OpenCache(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to open draft cache")
	}
	defer closeCache()
	log.Info().Str("backend", cfg.Cache.Backend).Msg("Draft cache ready")

	// Initialize repositories
	store, err := cloudinary.NewClient(cfg.Cloudinary, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create asset store client")
	}
	repos := repository.New(store, cache)

	// Initialize services
	provider := auth.NewGoTrueProvider(cfg.Auth, log)
	services := service.NewServices(repos, provider, mailer.NewSMTPMailer(cfg.SMTP, log), cfg, log)

	// Start background cache sync
	if cfg.Sync.Enabled {
		go services.Sync.StartProcessor(context.Background())
		log.Info().Dur("interval", cfg.Sync.Interval).Msg("Background cache sync started")
	}

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop cache sync
	services.Sync.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
