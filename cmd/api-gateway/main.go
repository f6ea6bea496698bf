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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Junior-NGOY/masomo-sub003/api/swagger"
	"github.com/Junior-NGOY/masomo-sub003/internal/handler"
	"github.com/Junior-NGOY/masomo-sub003/internal/middleware"
	"github.com/Junior-NGOY/masomo-sub003/internal/repository"
	"github.com/Junior-NGOY/masomo-sub003/internal/service"
	"github.com/Junior-NGOY/masomo-sub003/pkg/cache"
	"github.com/Junior-NGOY/masomo-sub003/pkg/config"
	"github.com/Junior-NGOY/masomo-sub003/pkg/database"
	"github.com/Junior-NGOY/masomo-sub003/pkg/export"
	"github.com/Junior-NGOY/masomo-sub003/pkg/jobs"
	"github.com/Junior-NGOY/masomo-sub003/pkg/locker"
	"github.com/Junior-NGOY/masomo-sub003/pkg/logger"
	corsmiddleware "github.com/Junior-NGOY/masomo-sub003/pkg/middleware/cors"
	reqidmiddleware "github.com/Junior-NGOY/masomo-sub003/pkg/middleware/requestid"
	"github.com/Junior-NGOY/masomo-sub003/pkg/storage"
)

// @title Masomo Attendance API
// @version 1.0.0
// @description Daily class attendance sessions, monthly statistics and exports
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	loc := cfg.Attendance.Location()

	store := repository.NewAttendanceStore(db)
	roster := repository.NewRosterRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Attendance.StatsCacheTTL, logr, cfg.Attendance.StatsCache && redisClient != nil)

	rollup := service.NewAttendanceRollupService(store, cacheSvc, metrics, loc, cfg.Attendance.StatsCacheTTL, logr)
	sessions := service.NewAttendanceSessionService(
		store,
		roster,
		newLocker(cfg.Attendance, redisClient),
		rollup,
		metrics,
		service.AttendanceSessionConfig{
			Location:         loc,
			OperationTimeout: cfg.Attendance.OperationTimeout,
			RetryBackoff:     cfg.Attendance.RetryBackoff,
		},
		validator.New(),
		logr,
	)
	exports := service.NewAttendanceExportService(store, export.NewCSVExporter(export.WithBOM()), export.NewPDFExporter(), loc, logr)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	routes := handler.Routes{
		Auth:       authSvc,
		Attendance: handler.NewAttendanceHandler(sessions, rollup, exports),
	}

	if cfg.Exports.Enabled {
		queue, exportJobs, err := newExportJobs(ctx, cfg, db, exports, metrics, logr)
		if err != nil {
			return err
		}
		defer queue.Stop()
		routes.ExportJobs = handler.NewExportJobHandler(exportJobs)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return cache.Ready(ctx, redisClient)
		},
	})
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), routes)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLocker(cfg config.AttendanceConfig, client *redis.Client) locker.Locker {
	if cfg.LockBackend == config.LockBackendRedis && client != nil {
		return locker.NewRedis(client, cfg.LockTTL)
	}
	return locker.NewLocal()
}

func newExportJobs(ctx context.Context, cfg *config.Config, db *sqlx.DB, exports *service.AttendanceExportService, metrics *service.MetricsService, logr *zap.Logger) (*jobs.Queue, *service.ExportJobService, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	fileSvc := service.NewExportFileService(exports, files, signer, service.ExportFileConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	repo := repository.NewExportJobRepository(db)
	worker := service.NewExportJobWorker(repo, fileSvc, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("attendance-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		JobTimeout: 2 * time.Minute,
		Logger:     logr,
	})
	queue.Start(ctx)

	svc := service.NewExportJobService(repo, queue, exports, fileSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	if n := svc.RecoverPendingJobs(ctx); n > 0 {
		logr.Info("re-enqueued pending export jobs", zap.Int("count", n))
	}
	svc.StartCleanup(ctx)
	return queue, svc, nil
}
