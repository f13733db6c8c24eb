package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"surfcast/internal/clients"
	"surfcast/internal/config"
	"surfcast/internal/handlers"
	"surfcast/internal/repository"
	"surfcast/internal/services"
	"surfcast/pkg/database"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("surfcast-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting surfcast API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Database,
		"timezone":    cfg.Timezone,
	})

	location, err := cfg.Location()
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to resolve timezone", logging.Fields{}, err)
	}

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("surfcast")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repositories
	tideRepo := repository.NewTideRepository(db, logger, metricsCollector)
	reportRepo := repository.NewReportRepository(db, logger, metricsCollector)

	// Initialize upstream clients
	marineClient := clients.NewMarineClient(cfg.Upstream.MarineBaseURL, cfg.Upstream.MarineTimeout, logger, metricsCollector)
	tideClient := clients.NewTideClient(cfg.Upstream.TideBaseURL, cfg.Upstream.TideTimeout, logger, metricsCollector)
	llmClient := clients.NewLLMClient(cfg.Upstream.LLMBaseURL, cfg.Upstream.LLMAPIKey, cfg.Upstream.LLMModel, cfg.Upstream.LLMTimeout, logger, metricsCollector)

	// Regeneration lock is best-effort; without Redis the service tolerates
	// duplicate concurrent generations.
	var locker services.RegenLocker = services.NewNoopLocker()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		locker = services.NewRedisLocker(redisClient, logger)
	}

	// Initialize services
	clock := clockwork.NewRealClock()
	tideService := services.NewTideService(tideRepo, tideClient, clock, location, cfg.Tide.Latitude, cfg.Tide.Longitude, logger, metricsCollector)
	conditionsService := services.NewConditionsService(marineClient, tideService, logger, metricsCollector)
	reportService := services.NewReportService(reportRepo, conditionsService, llmClient, locker, clock, location, logger, metricsCollector)

	// Initialize handlers
	surfHandler := handlers.NewSurfHandler(conditionsService, tideService, reportService, cfg.Spots, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	surfHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
