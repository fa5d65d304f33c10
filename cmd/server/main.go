package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/orionpms/orion/internal/clients/p6"
	"github.com/orionpms/orion/internal/clients/sap"
	"github.com/orionpms/orion/internal/config"
	"github.com/orionpms/orion/internal/database"
	"github.com/orionpms/orion/internal/events"
	"github.com/orionpms/orion/internal/modules/mirror"
	"github.com/orionpms/orion/internal/modules/projects"
	"github.com/orionpms/orion/internal/modules/rollup"
	"github.com/orionpms/orion/internal/modules/wbs"
	"github.com/orionpms/orion/internal/scheduler"
	"github.com/orionpms/orion/internal/server"
	"github.com/orionpms/orion/pkg/logger"
)

func main() {
	// Load configuration first so the log level applies from the start
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true, Service: "orion-pms"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "orion-pms",
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting ORION PMS")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	projectRepo := projects.NewRepository(db.Conn(), log)
	wbsRepo := wbs.NewRepository(db.Conn(), log)
	uiStateRepo := wbs.NewUIStateRepository(db.Conn(), log)
	mirrorRepo := mirror.NewRepository(db.Conn(), log)

	// Services
	eventManager := events.NewManager(log)
	wbsService := wbs.NewService(wbsRepo, log)
	rollupService := rollup.NewService(projectRepo, wbsService, log)

	// Mirror job (only when both source systems are configured)
	var mirrorJob *mirror.Job
	if cfg.MirrorEnabled() {
		mirrorJob = mirror.NewJob(mirror.JobConfig{
			P6:          p6.NewClient(cfg.P6BaseURL, cfg.P6APIKey, log),
			SAP:         sap.NewClient(cfg.SAPBaseURL, cfg.SAPAPIKey, log),
			ProjectRepo: projectRepo,
			WBSRepo:     wbsRepo,
			RunRepo:     mirrorRepo,
			Events:      eventManager,
			Log:         log,
		})
	} else {
		log.Warn().Msg("P6/SAP sources not configured, mirror job disabled")
	}

	// Scheduler
	sched := scheduler.New(log)
	if mirrorJob != nil {
		if err := sched.AddJob(cfg.MirrorSchedule, mirrorJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register mirror job")
		}
	}
	healthCheck := scheduler.NewHealthCheckJob(scheduler.HealthCheckConfig{
		Log:         log,
		DB:          db.Conn(),
		ProjectRepo: projectRepo,
		Events:      eventManager,
	})
	if err := sched.AddJob("@every 6h", healthCheck); err != nil {
		log.Fatal().Err(err).Msg("Failed to register health check job")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DevMode: cfg.DevMode,
		Handlers: server.Handlers{
			Projects: projects.NewHandler(projectRepo, log),
			WBS:      wbs.NewHandler(wbsService, uiStateRepo, log),
			Rollup:   rollup.NewHandler(rollupService, log),
			Mirror:   mirror.NewHandler(mirrorRepo, mirrorJob, log),
			System:   server.NewSystemHandlers(log, filepath.Dir(cfg.DatabasePath), mirrorRepo),
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
