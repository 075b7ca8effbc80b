package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	_ "github.com/shenikar/incident_reporting_api/docs"
	v1 "github.com/shenikar/incident_reporting_api/internal/handler/http/v1"
	"github.com/shenikar/incident_reporting_api/internal/metrics"
	"github.com/shenikar/incident_reporting_api/internal/ratelimit"
	"github.com/shenikar/incident_reporting_api/internal/repository"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/shenikar/incident_reporting_api/internal/storage"
	"github.com/shenikar/incident_reporting_api/internal/webhook"
	"github.com/shenikar/incident_reporting_api/migrations"
	"github.com/shenikar/incident_reporting_api/pkg/postgres"
	redisclient "github.com/shenikar/incident_reporting_api/pkg/redis"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Запуск миграций
	log.Info("Running database migrations...")
	if err := migrations.Up(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations applied successfully")

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Хранилище вложений; без него инциденты создаются без файлов
	var blobs service.BlobStore
	if cfg.Minio.Enabled() {
		store, err := storage.NewMinioStore(cfg.Minio)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		blobs = store
		log.WithField("bucket", cfg.Minio.Bucket).Info("Attachment storage is ready")
	} else {
		log.Warn("MinIO is not configured, attachments will be skipped")
	}

	// Издатель и воркер вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Репозитории и сервисы
	userService, dispatcher, userRepo := newUserStack(cfg, dbpool, log)
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.CacheTTL)
	incidentService := service.NewIncidentService(incidentRepo, userRepo, blobs, dispatcher, webhookPublisher, log)

	authLimiter, err := ratelimit.NewAuthLimiter(redisClient, cfg.AuthRateLimit, log)
	if err != nil {
		return err
	}

	// Хэндлеры и роутер
	handler := v1.NewHandler(userService, incidentService, dispatcher, log)

	router := gin.Default()
	router.Use(metrics.Middleware())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api, authLimiter)

	router.GET("/metrics", metrics.Handler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		return fmt.Errorf("error starting HTTP server: %w", err)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
