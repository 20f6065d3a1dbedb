package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Tasheen2002/Security-Project/internal/cache"
	"github.com/Tasheen2002/Security-Project/internal/config"
	shophttp "github.com/Tasheen2002/Security-Project/internal/http"
	"github.com/Tasheen2002/Security-Project/internal/outbox"
	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/Tasheen2002/Security-Project/internal/service"
)

type indexCreator interface {
	CreateIndexes(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			logger.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()

	cartRepo := repository.NewMongoCartRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	reviewRepo := repository.NewMongoReviewRepository(db)
	purchaseRepo := repository.NewMongoPurchaseRepository(db)
	userRepo := repository.NewMongoUserRepository(db)
	outboxRepo := repository.NewMongoOutboxRepository(db)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, repo := range []interface{}{cartRepo, orderRepo, reviewRepo} {
		if creator, ok := repo.(indexCreator); ok {
			if err := creator.CreateIndexes(indexCtx); err != nil {
				logger.Fatal("index creation failed", zap.Error(err))
			}
		}
	}
	indexCancel()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	cartCache := cache.NewBreakerCache(cache.NewRedisCache(redisClient, cfg.CartCacheTTL))

	cartService := service.NewCartService(cartRepo, productRepo, cartCache, logger)
	checkoutService := service.NewCheckoutService(cartRepo, orderRepo, productRepo, outboxRepo, cartCache, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, outboxRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, logger)
	purchaseService := service.NewPurchaseService(purchaseRepo, logger)
	userService := service.NewUserService(userRepo, logger)

	poller := outbox.NewPoller(outboxRepo, logger, cfg.KafkaBrokers...)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	go poller.Run(pollerCtx)
	defer func() {
		pollerCancel()
		if err := poller.Close(); err != nil {
			logger.Warn("outbox poller close failed", zap.Error(err))
		}
	}()

	router := shophttp.NewRouter(shophttp.Handlers{
		Cart:     shophttp.NewCartHandler(cartService, logger, cfg.Development()),
		Order:    shophttp.NewOrderHandler(checkoutService, orderService, logger, cfg.Development()),
		Product:  shophttp.NewProductHandler(productService, logger, cfg.Development()),
		Review:   shophttp.NewReviewHandler(reviewService, logger, cfg.Development()),
		Purchase: shophttp.NewPurchaseHandler(purchaseService, logger, cfg.Development()),
		User:     shophttp.NewUserHandler(userService, logger, cfg.Development()),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shop-backend"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Development() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	return logger
}
