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

	"github.com/ewillweb/internal/cache"
	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/handler"
	"github.com/ewillweb/internal/logger"
	"github.com/ewillweb/internal/notify"
	"github.com/ewillweb/internal/router"
	"github.com/ewillweb/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	appLogger, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库；未配置 DATABASE_URL 时进入 mock 模式
	var gdb *gorm.DB
	if !cfg.MockMode() {
		if err := db.Init(cfg.DatabaseURL); err != nil {
			appLogger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		gdb = db.DB
		if err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
			appLogger.Error("failed to ensure admin user", "error", err)
			os.Exit(1)
		}
	} else {
		appLogger.Warn("DATABASE_URL not set, running in mock mode")
	}

	var (
		eventStore      service.EventStore
		submissionStore service.SubmissionStore
		auth            service.Authenticator
	)
	if gdb != nil {
		eventStore = service.NewGormEventStore(gdb)
		submissionStore = service.NewGormSubmissionStore(gdb)
		auth = service.NewGormAuthenticator(gdb)
	} else {
		eventStore = service.NewMockEventStore()
		submissionStore = service.MockSubmissionStore{}
		static, err := service.NewStaticAuthenticator(cfg.SuperRootUserName, cfg.SuperRootPassword)
		if err != nil {
			appLogger.Error("failed to prepare static admin", "error", err)
			os.Exit(1)
		}
		auth = static
	}

	contentCache := newContentCache(ctx, cfg, appLogger)
	provider, err := service.NewContentProvider(cfg, gdb)
	if err != nil {
		appLogger.Error("failed to select content provider", "error", err)
		os.Exit(1)
	}
	appLogger.Info("content provider selected", "source", provider.Name(), "cache_ttl", cfg.ContentCacheTTL.String())

	mailer := notify.NewMailer(cfg.ResendAPIKey)
	if cfg.ResendAPIKey == "" {
		appLogger.Warn("RESEND_API_KEY not set, contact notifications are disabled")
	}
	queue := notify.NewQueue(notify.QueueConfig{
		From:    cfg.FromEmail,
		To:      cfg.ContactEmail,
		Workers: cfg.NotifyWorkers,
		Size:    cfg.NotifyQueueSize,
	}, mailer, appLogger.With("component", "notify"))
	go func() {
		for err := range queue.Errors() {
			appLogger.Error("contact notification failed", "error", err)
		}
	}()

	api := handler.NewAPI(handler.Deps{
		Events:      service.NewEventService(eventStore, appLogger),
		Contact:     service.NewContactService(submissionStore, queue, appLogger),
		Content:     service.NewContentService(provider, contentCache, cfg.ContentCacheTTL, appLogger),
		Auth:        auth,
		Queue:       queue,
		Logger:      appLogger,
		Environment: cfg.Environment,
		MockMode:    cfg.MockMode(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("server listening", "addr", cfg.ListenAddr, "mock_mode", cfg.MockMode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", "error", err)
	}
	if err := queue.Close(shutdownCtx); err != nil {
		appLogger.Error("notification queue did not drain", "error", err)
	}
	stats := queue.Stats()
	appLogger.Info("notification queue closed", "sent", stats.Sent, "failed", stats.Failed, "dropped", stats.Dropped)
	if closer, ok := contentCache.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// newContentCache 配置了 REDIS_ADDR 时使用 Redis，连接失败退回进程内缓存。
func newContentCache(ctx context.Context, cfg config.AppConfig, log *logger.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	rc, err := cache.NewRedis(ctx, cfg.RedisAddr, "ewillweb:content:")
	if err != nil {
		log.Warn("redis unavailable, falling back to memory cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory()
	}
	return rc
}
