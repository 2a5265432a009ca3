package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "leaveflow/internal/adapter/http"
	"leaveflow/internal/adapter/middleware"
	"leaveflow/internal/adapter/notify"
	"leaveflow/internal/adapter/repository/mysql"
	"leaveflow/internal/config"
	"leaveflow/internal/infrastructure/cache"
	"leaveflow/internal/infrastructure/db"
	"leaveflow/internal/infrastructure/logger"
	"leaveflow/internal/usecase/balance"
	"leaveflow/internal/usecase/leave"
	"leaveflow/internal/usecase/workflow"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), zl)
	if err != nil {
		zl.Fatal("open mysql", zap.Error(err))
	}
	if err := db.AutoMigrate(gdb); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zl.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	tx := mysql.NewGormUoW(gdb)

	workflowUC := workflow.NewUsecase(tx, zl)
	if cfg.SeedWorkflows {
		n, err := workflowUC.SeedDefaults(ctx, config.DefaultWorkflows())
		if err != nil {
			zl.Fatal("seed workflows", zap.Error(err))
		}
		zl.Info("default workflows seeded", zap.Int("created", n))
	}

	mailer := notify.NewMailer(notify.Options{
		Enabled: cfg.EmailEnabled,
		Host:    cfg.SMTPHost,
		Port:    cfg.SMTPPort,
		User:    cfg.SMTPUser,
		Pass:    cfg.SMTPPass,
		From:    cfg.EmailFrom,
	}, zl)
	sender := notify.NewEmailSender(mailer, cfg.EmailFrom)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Error(v.Error),
			)
			return nil
		},
	}), echomw.Recover())

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHealthHandler("leaveflow", map[string]httpadp.Pinger{
			"database": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Leave:    httpadp.NewLeaveHandler(leave.NewUsecase(tx, sender, zl)),
		Balance:  httpadp.NewBalanceHandler(balance.NewUsecase(tx, zl)),
		Workflow: httpadp.NewWorkflowHandler(workflowUC),
	}, middleware.RequireActor(), middleware.Idempotency(rdb, cfg.IdempotencyTTL(), zl))

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
