package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jisoo/quantfolio/internal/api"
	"github.com/jisoo/quantfolio/internal/api/handlers"
	"github.com/jisoo/quantfolio/internal/correlations"
	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/preset"
	"github.com/jisoo/quantfolio/internal/scheduler"
	"github.com/jisoo/quantfolio/internal/scheduler/jobs"
	"github.com/jisoo/quantfolio/pkg/config"
	"github.com/jisoo/quantfolio/pkg/database"
	"github.com/jisoo/quantfolio/pkg/httputil"
	"github.com/jisoo/quantfolio/pkg/logger"
	"github.com/jisoo/quantfolio/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                    - Health check
  POST /api/optimize              - Efficient frontier + portfolio selection
  POST /api/simulate              - Monte Carlo forward simulation
  GET  /api/simulate/ws           - Simulation with websocket progress
  POST /api/correlations/import   - Correlation matrix import
  GET  /api/presets               - List saved presets (requires database)

Example:
  go run ./cmd/quantfolio api
  go run ./cmd/quantfolio api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// Redis is optional; a disabled client degrades to the in-process memo.
	redisClient := redis.Disabled()
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, caching degraded to in-process memo")
			redisClient = redis.Disabled()
		}
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "quantfolio")

	// Preset persistence is optional; without DATABASE_URL the preset
	// routes are simply omitted.
	var presetRepo *preset.Repository
	var presetHandler *handlers.PresetHandler
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		presetRepo = preset.NewRepository(db.Pool)
		if err := presetRepo.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate presets: %w", err)
		}
		presetHandler = handlers.NewPresetHandler(presetRepo, log)

		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, preset persistence disabled")
	}

	httpClient := httputil.New(log, cfg.Correlations.Timeout).
		WithRateLimit(5, 5)

	corrClient := correlations.New(httpClient, cfg.Correlations.BaseURL, cfg.Engine.DefaultCorrelation, nil, log)

	eng := engine.New(cfg.Engine, cache, log)

	router := api.NewRouter(
		handlers.NewOptimizeHandler(eng, log),
		handlers.NewSimulateHandler(eng, log),
		handlers.NewCorrelationsHandler(corrClient, log),
		presetHandler,
		log,
	)

	server := api.New(cfg, log, router)

	// Nightly correlation refresh runs only when presets and a schedule
	// both exist.
	var sched *scheduler.Scheduler
	if presetRepo != nil && cfg.Correlations.RefreshSchedule != "" {
		sched = scheduler.New(log)
		job := jobs.NewCorrelationRefreshJob(corrClient, presetRepo, cache, cfg.Correlations.RefreshSchedule, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
