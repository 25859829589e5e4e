package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vitalflow/analytics/internal/config"
	"github.com/vitalflow/analytics/internal/handlers"
	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/metrics"
	"github.com/vitalflow/analytics/internal/middleware"
	"github.com/vitalflow/analytics/internal/publisher"
	"github.com/vitalflow/analytics/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server exposing the ingestion and reporting endpoints.`,
	RunE:  runServe,
}

var servePort string

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	log := logger.NewSlogLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	logger.SetDefault(log)

	log.Info("starting vitalflow API server",
		logger.String("env", cfg.Server.Env),
		logger.String("storage", cfg.Storage.Backend),
	)

	rollupRepo, counterRepo, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	collector := metrics.NewCollector()
	pub := publisher.NewLogPublisher(log)

	applier := service.NewApplier(rollupRepo, counterRepo, pub, collector, log)
	reporting := service.NewReportingService(rollupRepo, counterRepo)

	rollupHandler := handlers.NewRollupHandler(reporting, log)
	eventHandler := handlers.NewEventHandler(applier, log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.Logger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", eventHandler.Ingest)
		v1.GET("/stats/:username", rollupHandler.GetLifetimeStats)
		v1.GET("/rollups/:username", rollupHandler.GetRollup)
		v1.GET("/rollups/:username/recent", rollupHandler.GetRecentRollups)
		v1.GET("/summary/:username", rollupHandler.GetSummary)
	}

	log.Info("server listening", logger.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
