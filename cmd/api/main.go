package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-board/internal/api"
	"github.com/sanosuguru/go-event-board/internal/api/handler"
	"github.com/sanosuguru/go-event-board/internal/api/middleware"
	"github.com/sanosuguru/go-event-board/internal/application"
	"github.com/sanosuguru/go-event-board/internal/config"
	"github.com/sanosuguru/go-event-board/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-board/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-board/internal/infrastructure/storage"
	"github.com/sanosuguru/go-event-board/internal/pkg/logger"
	"github.com/sanosuguru/go-event-board/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-board/internal/worker"
)

func main() {
	// .env は任意
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.App.Env)
	defer logger.Sync()
	m := metrics.Init()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("DB接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.App.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	checks := map[string]handler.Pinger{
		"postgres": handler.PingerFunc(func(ctx context.Context) error { return postgres.Ping(ctx, db) }),
	}

	// 一覧キャッシュ（Redis未起動時はキャッシュなしで続行）
	var (
		cache       application.ListCache
		redisClient *redis.Client
	)
	if cfg.Cache.Enabled {
		redisClient, err = redisinfra.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis接続エラー、キャッシュなしで起動します", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisinfra.NewEventListCache(redisClient, cfg.Cache.TTL)
			checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) })
		}
	}

	store, err := storage.New(&cfg.Storage, m)
	if err != nil {
		logger.Fatal("ストレージ初期化エラー", zap.Error(err))
	}

	eventService := application.NewEventService(postgres.NewEventRepository(db), store, cache, m)

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, &cfg.Server)
	e.Use(middleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.NewEventHandler(eventService), handler.NewHealthHandler(checks))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	// ローカル保存の添付ファイルを公開する
	if cfg.Storage.Driver == storage.DriverLocal || cfg.Storage.Driver == "" {
		e.Static(cfg.Storage.URLPrefix, cfg.Storage.Dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var refresher *worker.ListCacheRefresher
	if cache != nil {
		refresher = worker.NewListCacheRefresher(eventService, cfg.Cache.RefreshInterval)
		go refresher.Start(ctx)
	}

	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("サーバー起動エラー", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
