package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-api/internal/config"
	"github.com/flicky/storefront-api/internal/handler"
	"github.com/flicky/storefront-api/internal/middleware"
	"github.com/flicky/storefront-api/internal/payment"
	"github.com/flicky/storefront-api/internal/repository"
	"github.com/flicky/storefront-api/internal/service"
	"github.com/flicky/storefront-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(ctx, dbPool); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
		log.Info("database schema applied")
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ. Publishing and consuming use separate channels.
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	consumeCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer consumeCh.Close()

	if err := worker.SetupRabbitMQ(consumeCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}

	publishCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer publishCh.Close()
	log.Info("connected to RabbitMQ")

	// Repositories
	tx := repository.NewTransactor(dbPool)
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	addressRepo := repository.NewAddressRepository(dbPool)

	// Services
	payments := payment.NewStubProcessor(cfg.Payment.AcceptedMethods...)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(productRepo, redisClient)
	cartSvc := service.NewCartService(tx, cartRepo, productRepo)
	orderSvc := service.NewOrderService(tx, orderRepo, cartRepo, payments, worker.NewPublisher(publishCh), log)
	addressSvc := service.NewAddressService(tx, addressRepo, userRepo)

	if err := handler.RegisterValidators(); err != nil {
		log.Error("register validators", "error", err)
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	handler.RegisterRoutes(router, handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Product: handler.NewProductHandler(productSvc),
		Cart:    handler.NewCartHandler(cartSvc),
		Order:   handler.NewOrderHandler(orderSvc),
		Address: handler.NewAddressHandler(addressSvc),
		Health:  handler.NewHealthHandler(dbPool, redisClient, amqpConn),
	}, cfg.JWT.Secret)

	// Background workers
	orderWorker := worker.NewOrderWorker(consumeCh, tx, orderRepo, productRepo, redisClient, log)
	if err := orderWorker.Start(ctx); err != nil {
		log.Error("start order worker", "error", err)
		os.Exit(1)
	}

	var reconciler *worker.Reconciler
	if cfg.Reconciler.Enabled {
		reconciler, err = worker.NewReconciler(orderSvc, cfg.Reconciler.Schedule, cfg.Reconciler.GracePeriod, log)
		if err != nil {
			log.Error("create reconciler", "error", err)
			os.Exit(1)
		}
		reconciler.Start()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if reconciler != nil {
		reconciler.Stop()
	}
	orderWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
