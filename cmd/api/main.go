package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mwvndva/bybloshq-ticketing/internal/api"
	"github.com/Mwvndva/bybloshq-ticketing/internal/api/handler"
	custommiddleware "github.com/Mwvndva/bybloshq-ticketing/internal/api/middleware"
	"github.com/Mwvndva/bybloshq-ticketing/internal/application"
	"github.com/Mwvndva/bybloshq-ticketing/internal/config"
	"github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/gateway"
	"github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/postgres"
	redisinfra "github.com/Mwvndva/bybloshq-ticketing/internal/infrastructure/redis"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/clock"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/logger"
	"github.com/Mwvndva/bybloshq-ticketing/internal/pkg/metrics"
	"github.com/Mwvndva/bybloshq-ticketing/internal/worker"
)

func main() {
	// .env ファイル読み込み（存在しない場合は環境変数をそのまま使う）
	_ = godotenv.Load()

	// ロガー初期化
	env := os.Getenv("APP_ENV")
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	cfg := config.Load()

	ctx := context.Background()

	// PostgreSQL 接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis 接続
	redisClient, err := redisinfra.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Redis接続エラー", zap.Error(err))
	}
	defer redisClient.Close()

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	ticketRepo := postgres.NewTicketTypeRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	txManager := postgres.NewTxManager(db)

	// インフラストラクチャ
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient)
	lockManager := redisinfra.NewLockManager(redisClient)
	paymentGateway := gateway.NewClient(&cfg.Gateway)

	clk := clock.NewSystem()

	// アプリケーションサービス
	eventService := application.NewEventService(eventRepo, ticketRepo, availabilityCache, clk)
	ticketService := application.NewTicketService(ticketRepo, eventRepo, availabilityCache, clk)
	purchaseService := application.NewPurchaseService(
		txManager, purchaseRepo, ticketRepo, eventRepo,
		lockManager, paymentGateway, availabilityCache, clk, m,
	)

	// ハンドラー
	eventHandler := handler.NewEventHandler(eventService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	healthHandler := handler.NewHealthHandler()

	// Echo インスタンス作成
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	events := v1.Group("/events")
	events.POST("", eventHandler.Create)
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.GetByID)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)
	events.POST("/:id/publish", eventHandler.Publish)
	events.POST("/:id/cancel", eventHandler.Cancel)
	events.GET("/:id/availability", eventHandler.Availability)
	events.POST("/:id/ticket-types", ticketHandler.Create)
	events.GET("/:id/ticket-types", ticketHandler.ListByEvent)

	ticketTypes := v1.Group("/ticket-types")
	ticketTypes.GET("/:id", ticketHandler.GetByID)
	ticketTypes.GET("/:id/status", ticketHandler.Status)
	ticketTypes.PUT("/:id", ticketHandler.Update)
	ticketTypes.POST("/:id/activate", ticketHandler.Activate)
	ticketTypes.POST("/:id/deactivate", ticketHandler.Deactivate)
	ticketTypes.DELETE("/:id", ticketHandler.Delete)

	purchases := v1.Group("/purchases")
	purchases.POST("", purchaseHandler.Create)
	purchases.GET("", purchaseHandler.ListMine)
	purchases.GET("/:id", purchaseHandler.GetByID)
	purchases.POST("/:id/refund", purchaseHandler.Refund)

	// Prometheus メトリクスエンドポイント
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// 期限切れ購入ワーカー起動
	workerCtx, workerCancel := context.WithCancel(ctx)
	expirer := worker.NewPendingPurchaseExpirer(purchaseService, cfg.Worker.ExpireInterval)
	go expirer.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	workerCancel()
	expirer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
