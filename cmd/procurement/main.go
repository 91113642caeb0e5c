package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/config"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/middleware"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/handler"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/scheduler"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/database"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/metrics"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/sse"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const ssePath = "/api/notifications/stream"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting procurement service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db, entity.Models()...); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	var blobs service.BlobStore
	if cfg.MinIO.Enabled {
		store, err := storage.NewMinioStore(ctx, storage.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init object storage", zap.Error(err))
		}
		blobs = store
		zapLogger.Info("Attachment payloads stored in MinIO", zap.String("bucket", cfg.MinIO.Bucket))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = initRedis(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, notifications stay local", zap.Error(err))
			rdb.Close()
			rdb = nil
		}
	}

	hub := sse.NewHub(zapLogger)
	publisher := sse.NewPublisher(hub, rdb, cfg.Redis.Channel, zapLogger)
	go publisher.Run(ctx)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, blobs, publisher, zapLogger, service.Options{
		Location:   cfg.Procurement.Location(),
		SystemUser: cfg.Procurement.SystemUser,
	})

	if cfg.Procurement.SeedSample {
		if _, err := services.Purchase.EnsureSeeded(ctx); err != nil {
			zapLogger.Warn("Failed to seed sample purchase", zap.Error(err))
		}
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, cfg.Procurement.Location(), services.Attachment, services.Notification, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	metrics.Register()
	handlers := handler.NewHandlers(services, hub, cfg.Attachment.MaxSize, zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Actor())
	router.Use(middleware.Prometheus())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{ssePath})))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterRoutes(router.Group("/api"))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE connections are long-lived
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
