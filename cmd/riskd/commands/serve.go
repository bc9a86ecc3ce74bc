package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akenfack/creditrisk/internal/api"
	"github.com/akenfack/creditrisk/internal/api/handlers"
	"github.com/akenfack/creditrisk/internal/audit"
	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/internal/scheduler"
	"github.com/akenfack/creditrisk/internal/scheduler/jobs"
	"github.com/akenfack/creditrisk/pkg/config"
	"github.com/akenfack/creditrisk/pkg/database"
	"github.com/akenfack/creditrisk/pkg/logger"
	"github.com/akenfack/creditrisk/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision API server",
	Long: `Starts the HTTP API server over the initialized decision engine.

Endpoints:
  GET /health                        - Health check
  GET /api/clients                   - Client identifiers
  GET /api/clients/sample            - Seeded sample of client records
  GET /api/clients/{id}              - One client record
  GET /api/features                  - Feature catalog
  GET /api/credit/{id}               - Solvency decision
  GET /api/credit/{id}/neighbors     - Most similar clients
  GET /api/explain/{id}              - Local attribution
  GET /api/explain/global            - Ranked global attribution
  GET /api/drift                     - Population drift report
  GET /api/drift/live                - Drift report websocket feed

Example:
  go run ./cmd/riskd serve
  go run ./cmd/riskd serve --port 8000`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing decision service")

	// 3. Initialize the decision engine (fatal on any step failure)
	eng, err := engine.Bootstrap(cfg, log)
	if err != nil {
		return fmt.Errorf("bootstrap engine: %w", err)
	}

	// 4. Connect to database for the decision audit trail (optional)
	var auditRepo *audit.Repository
	if cfg.AuditEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		auditRepo = audit.NewRepository(db.Pool)
		log.Info("Decision audit trail enabled")
	}

	// 5. Connect to Redis for the prediction cache (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "creditrisk")
		log.Info("Prediction cache enabled")
	}

	// 6. Create handlers
	clientHandler := handlers.NewClientHandler(eng, cfg.Sampling.ClientSampleSize, cfg.Sampling.ClientSampleSeed, log)
	creditHandler := handlers.NewCreditHandler(eng, cache, cfg.Redis.CacheTTL, auditRepo, log)
	explainHandler := handlers.NewExplainHandler(eng, log)
	driftHandler := handlers.NewDriftHandler(eng, log)

	// 7. Create router and server
	router := api.NewRouter(clientHandler, creditHandler, explainHandler, driftHandler, log)
	server := api.New(cfg, log, router)

	// 8. Schedule drift recomputation when snapshots are configured
	sched := scheduler.New(log)
	if cfg.Data.ReferencePath != "" || cfg.Data.CurrentPath != "" {
		if err := sched.AddJob(jobs.NewDriftRecompute(eng, driftHandler, cfg.Drift.Schedule, log)); err != nil {
			return fmt.Errorf("schedule drift job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
