package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uni-timetable-api/api/swagger"
	"github.com/noah-isme/uni-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-timetable-api/pkg/storage"
)

// @title University Timetable API
// @version 1.0.0
// @description Weekly class timetable generation, auditing and publishing for university programs.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Caching.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Caching.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	snapshotRepo := repository.NewSnapshotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	timetableSvc := service.NewTimetableService(snapshotRepo, timetableRepo, db, cacheSvc, metricsSvc, nil, logr, cfg.Engine)
	auditSvc := service.NewAuditService(timetableRepo, snapshotRepo, nil, logr)
	cycleSvc := service.NewCycleService(snapshotRepo, nil, logr, cfg.Engine, cfg.Cycle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cycleSvc.Start(ctx)
	defer cycleSvc.Stop()

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	cycleHandler := handler.NewCycleHandler(cycleSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(timetableRepo, snapshotRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
		exportHandler = handler.NewExportHandler(exportSvc)

		if cfg.Exports.CleanupInterval > 0 {
			go func() {
				ticker := time.NewTicker(cfg.Exports.CleanupInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if removed, err := exportSvc.Cleanup(0); err != nil {
							logr.Sugar().Warnw("export cleanup failed", "error", err)
						} else if len(removed) > 0 {
							logr.Sugar().Infow("export cleanup removed files", "count", len(removed))
						}
					}
				}
			}()
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetables/generate", timetableHandler.Generate)
		api.POST("/timetables/save", timetableHandler.Save)
		api.POST("/timetables/audit", auditHandler.Audit)
		api.GET("/timetables", timetableHandler.List)
		api.GET("/timetables/:id", timetableHandler.Get)
		api.PATCH("/timetables/:id/status", timetableHandler.UpdateStatus)
		api.DELETE("/timetables/:id", timetableHandler.Delete)

		api.POST("/cycles/generate", cycleHandler.Generate)
		api.GET("/cycles/jobs/:id", cycleHandler.GetJob)

		api.GET("/metrics/snapshot", metricsHandler.Snapshot)

		if exportHandler != nil {
			api.GET("/timetables/:id/export", exportHandler.Export)
			api.GET("/exports/:token", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
