package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cetus-shop/cetus-catalog-service/config"
	"github.com/cetus-shop/cetus-catalog-service/internal/auth"
	"github.com/cetus-shop/cetus-catalog-service/internal/cart"
	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/sku"
	"github.com/cetus-shop/cetus-catalog-service/pkg/broker"
	"github.com/cetus-shop/cetus-catalog-service/pkg/cache"
	"github.com/cetus-shop/cetus-catalog-service/pkg/database/postgres"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"github.com/cetus-shop/cetus-catalog-service/pkg/search"

	cartH "github.com/cetus-shop/cetus-catalog-service/internal/cart/handler"
	cartRepoPkg "github.com/cetus-shop/cetus-catalog-service/internal/cart/repository"
	cartUCPkg "github.com/cetus-shop/cetus-catalog-service/internal/cart/usecase"

	catH "github.com/cetus-shop/cetus-catalog-service/internal/category/handler"
	catRepoPkg "github.com/cetus-shop/cetus-catalog-service/internal/category/repository"
	catUCPkg "github.com/cetus-shop/cetus-catalog-service/internal/category/usecase"

	invH "github.com/cetus-shop/cetus-catalog-service/internal/inventory/handler"
	invListenerPkg "github.com/cetus-shop/cetus-catalog-service/internal/inventory/listener"
	invRepoPkg "github.com/cetus-shop/cetus-catalog-service/internal/inventory/repository"
	invUCPkg "github.com/cetus-shop/cetus-catalog-service/internal/inventory/usecase"

	orderH "github.com/cetus-shop/cetus-catalog-service/internal/order/handler"
	orderRepoPkg "github.com/cetus-shop/cetus-catalog-service/internal/order/repository"
	orderUCPkg "github.com/cetus-shop/cetus-catalog-service/internal/order/usecase"

	prodH "github.com/cetus-shop/cetus-catalog-service/internal/product/handler"
	prodRepoPkg "github.com/cetus-shop/cetus-catalog-service/internal/product/repository"
	prodUCPkg "github.com/cetus-shop/cetus-catalog-service/internal/product/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg, err := config.LoadEnv()
	if err != nil {
		panic(err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	var cartStore cart.Store = cartRepoPkg.NewRedisStore(redisClient.Client)
	if cfg.Cart.Store == "memory" {
		appLogger.Warn("Using in-memory cart store, carts are lost on restart")
		cartStore = cartRepoPkg.NewMemoryStore()
	}

	// 6. Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 7. Initialize Elasticsearch (optional)
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Elasticsearch unavailable, product search uses Postgres", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, sku.NewGenerator(), appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartStore, prodRepo, time.Duration(cfg.Cart.TTLHours)*time.Hour, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, cartStore, prodRepo, kafkaProducer, appLogger)

	// 9. Start Listeners
	ctx, cancel := context.WithCancel(context.Background())
	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
	go invListener.Start(ctx)

	// 10. HTTP Server
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(appLogger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(auth.Middleware)
	registerHealthCheck(router, db)

	catH.NewCategoryHandler(catUC, appLogger).RegisterRoutes(router)
	prodH.NewProductHandler(prodUC, appLogger).RegisterRoutes(router)
	cartH.NewCartHandler(cartUC, appLogger).RegisterRoutes(router)
	invH.NewInventoryHandler(invUC, appLogger).RegisterRoutes(router)
	orderH.NewOrderHandler(orderUC, appLogger).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         normalizePort(cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 11. gRPC Server
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.UnaryInterceptor()),
	)
	prodH.RegisterSelectorServer(grpcServer, prodH.NewSelectorHandler(prodUC, appLogger))
	grpc_health_v1.RegisterHealthServer(grpcServer, health.NewServer())
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutting down server...", zap.String("signal", sig.String()))

	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	}

	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		appLogger.Warn("gRPC graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}

	if err := kafkaConsumer.Close(); err != nil {
		appLogger.Warn("failed to close kafka consumer", zap.Error(err))
	}
	if err := kafkaProducer.Close(); err != nil {
		appLogger.Warn("failed to close kafka producer", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		appLogger.Warn("failed to close redis", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		appLogger.Warn("failed to close database", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func registerHealthCheck(router chi.Router, db *sqlx.DB) {
	router.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
		httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}
