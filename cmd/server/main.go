package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/reflection"

	api "carrental-backend/internal/api/grpc"
	httpapi "carrental-backend/internal/api/http"
	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/guard"
	"carrental-backend/internal/lifecycle"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
	"carrental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, "server")
	logger.Info("Starting car rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Submission guard: Redis when configured so replicas share locks
	var submitGuard guard.Guard = guard.NewMemoryGuard()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to reach redis: %v", err)
		}
		submitGuard = guard.NewRedisGuard(rdb, cfg.LockTTL())
		logger.Info("Using redis submission guard", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("Using in-process submission guard")
	}

	// Invalidation sinks
	hub := events.NewHub()
	publisher := events.NewMulti().With("websocket", hub)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPub.Close()
		publisher.With("kafka", kafkaPub)
		logger.Info("Publishing invalidations to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	// Evidence storage; Validate only admits "mock"
	evidenceStore, err := storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize evidence storage: %v", err)
	}
	logger.Info("Using local evidence storage", "upload_dir", cfg.Storage.UploadDir)

	// Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	noteSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, emailSvc)

	var resolverOpts []lifecycle.Option
	if cfg.Lifecycle.CustomerCancelHiddenStatus != "" {
		hidden, _ := domain.ParseBookingStatus(cfg.Lifecycle.CustomerCancelHiddenStatus) // checked by Validate
		resolverOpts = append(resolverOpts, lifecycle.WithCustomerCancelHiddenStatus(hidden))
	}
	resolver := lifecycle.NewResolver(resolverOpts...)

	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.HistoryRepository,
		store.SettlementRepository,
		resolver,
		submitGuard,
		publisher,
		noteSvc,
		evidenceStore,
		cfg.EvidenceURLExpiry(),
	)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenExpiry())

	// gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(tokenManager, bookingSvc, noteSvc)
	reflection.Register(grpcServer)

	// HTTP server: evidence files, invalidation websocket, metrics
	httpServer := &http.Server{
		Addr: cfg.GetHTTPAddress(),
		Handler: httpapi.NewRouter(httpapi.Options{
			Files:         evidenceStore,
			MaxUploadSize: cfg.Storage.MaxFileSize << 20,
			Hub:           hub,
			EnableMetrics: true,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped")
}
