package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"file-lifecycle-manager/internal/config"
	"file-lifecycle-manager/internal/daak"
	"file-lifecycle-manager/internal/db"
	"file-lifecycle-manager/internal/file"
	"file-lifecycle-manager/internal/logger"
	"file-lifecycle-manager/internal/middleware"
	"file-lifecycle-manager/internal/template"
	"file-lifecycle-manager/internal/user"
	"file-lifecycle-manager/internal/worker"
	"file-lifecycle-manager/internal/workflow"
	"file-lifecycle-manager/redis"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	log := logger.Init(cfg.Environment, cfg.LogLevel)

	// Connect to database
	if err := db.ConnectDb(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.CloseDb(log)

	// Migrate database schema
	if err := db.Migrate(db.AppDb); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("database schema migrated")

	// Seed database with initial data (for development)
	if cfg.Environment == "development" {
		if err := db.SeedData(context.Background(), db.AppDb, log); err != nil {
			log.Error().Err(err).Msg("seeding failed")
		}
	}

	// Initialize Redis
	redisClient := redis.InitRedis(context.Background(), cfg.RedisAddress, log)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := redis.NewCache(redisClient)

	pool := worker.NewWorkerPool(cfg.WorkerPoolSize, log)

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	templateRepo := template.NewRepository(db.AppDb)
	fileRepo := file.NewRepository(db.AppDb)
	daakRepo := daak.NewRepository(db.AppDb)

	// Initialize services
	engine := workflow.NewEngine(workflow.NewGormStore(db.AppDb), log)
	userService := user.NewService(userRepo)
	templateService := template.NewService(templateRepo, userService)
	fileService := file.NewService(fileRepo, engine, userService, templateService, cache, pool, cfg.CacheTTL, log)
	daakService := daak.NewService(daakRepo, userService, cache, log)

	router := newRouter(cfg, routes{
		auth:     &middleware.Auth{UserService: userService},
		user:     user.NewHandler(userService),
		template: template.NewHandler(templateService),
		file:     file.NewHandler(fileService),
		daak:     daak.NewHandler(daakService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// gRPC health for orchestrators
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("gRPC server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	grpcServer.GracefulStop()
	pool.Shutdown()

	log.Info().Msg("server shutdown complete")
}
