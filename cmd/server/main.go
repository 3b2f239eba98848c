package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskdesk/backend/api/handler"
	"github.com/taskdesk/backend/internal/config"
	"github.com/taskdesk/backend/internal/idgen"
	"github.com/taskdesk/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskdesk/backend/internal/infrastructure/postgres"
	"github.com/taskdesk/backend/internal/middleware"
	"github.com/taskdesk/backend/internal/router"
	"github.com/taskdesk/backend/internal/services"
	"github.com/taskdesk/backend/internal/services/lifecycle"
	"github.com/taskdesk/backend/pkg/httpcontext"
	"github.com/taskdesk/backend/pkg/logger"
	"github.com/taskdesk/backend/repository"
	boltRepo "github.com/taskdesk/backend/repository/bolt"
	fileRepo "github.com/taskdesk/backend/repository/file"
	pgRepo "github.com/taskdesk/backend/repository/postgres"
	authUC "github.com/taskdesk/backend/usecase/auth"
	storeUC "github.com/taskdesk/backend/usecase/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	snapRepo, err := openSnapshotRepository(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("snapshot store failed", zap.Error(err))
	}
	manager.Register("snapshot_store", func(ctx context.Context) error {
		return snapRepo.Close()
	})

	mon := monitor.New(snapRepo, cfg.Snapshot.Backend, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskStore := storeUC.New(snapRepo, idgen.NewClock(), zapLogger)
	authService := authUC.New(snapRepo, authUC.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	}, zapLogger)

	reporter := services.NewStatsReporter(taskStore, zapLogger, services.ReporterConfig{
		Interval: cfg.Stats.ReportInterval,
	})
	reporter.Start()
	manager.Register("stats_reporter", func(ctx context.Context) error {
		reporter.Stop(ctx)
		return nil
	})

	location, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		zapLogger.Warn("unknown display timezone, using local", zap.String("timezone", cfg.Display.Timezone))
		location = time.Local
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authService, ctxAdapter, zapLogger),
		Data:     apiHandler.NewDataHandler(taskStore, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(taskStore, location, ctxAdapter, zapLogger),
		Assignee: apiHandler.NewAssigneeHandler(taskStore, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(authService, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("snapshot_backend", cfg.Snapshot.Backend),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openSnapshotRepository(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (repository.SnapshotRepository, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendBolt:
		return boltRepo.NewSnapshotRepository(cfg.Snapshot.BoltPath, cfg.Snapshot.Bucket)
	case config.BackendPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			return nil, err
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return nil, err
		}
		return pgRepo.NewSnapshotRepository(pool), nil
	default:
		return fileRepo.NewSnapshotRepository(cfg.Snapshot.FilePath)
	}
}
