package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"chitfund-backend/internal/adapter/certificate"
	httpadp "chitfund-backend/internal/adapter/http"
	"chitfund-backend/internal/adapter/middleware"
	"chitfund-backend/internal/adapter/repository/mysql"
	"chitfund-backend/internal/config"
	"chitfund-backend/internal/domain/notification"
	"chitfund-backend/internal/infrastructure/cache"
	"chitfund-backend/internal/infrastructure/db"
	"chitfund-backend/internal/infrastructure/logger"
	"chitfund-backend/internal/infrastructure/metrics"
	"chitfund-backend/internal/infrastructure/notify"
	"chitfund-backend/internal/infrastructure/scheduler"
	ucScheme "chitfund-backend/internal/usecase/scheme"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepTimeout    = 5 * time.Minute
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.Options{MaxOpenConns: cfg.DBMaxOpenConns, LogLevel: cfg.DBLogLevel})
	if err != nil {
		zl.Fatal("mysql_open_failed", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		zl.Fatal("mysql_migrate_failed", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		zl.Fatal("redis_open_failed", zap.Error(err))
	}
	defer rdb.Close()

	var notifier notification.Notifier = notify.NewLogNotifier(zl)
	if cfg.NotifyChannel != "" {
		notifier = notify.NewRedisNotifier(rdb, cfg.NotifyChannel, zl)
	}
	m := metrics.New()

	uc := ucScheme.NewUsecase(mysql.NewRepos(gdb), mysql.NewGormUoW(gdb), ucScheme.Options{
		Notifier:               notifier,
		Logger:                 zl,
		Metrics:                m,
		AllowDirectPSOApproval: cfg.AllowDirectPSOApproval,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(zl), middleware.Metrics(m))

	httpadp.RegisterRoutes(e,
		httpadp.NewHandler(
			httpadp.HealthCheck{Name: "mysql", Check: db.Ping(gdb)},
			httpadp.HealthCheck{Name: "redis", Check: cache.Ping(rdb)},
		),
		httpadp.NewSchemeHandler(uc, certificate.NewPSORenderer("Registrar of Chits"), zl),
		m.Handler(),
		middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), zl),
	)

	sched := scheduler.New(zl, sweepTimeout)
	if cfg.MaturitySweepSpec != "" {
		err := sched.Register(cfg.MaturitySweepSpec, "maturity_sweep", func(ctx context.Context) error {
			_, err := uc.SweepMatured(ctx)
			return err
		})
		if err != nil {
			zl.Fatal("scheduler_register_failed", zap.Error(err))
		}
	}
	sched.Start()

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sched.Stop(ctx)
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("shutdown_failed", zap.Error(err))
	}
	zl.Info("stopped")
}
