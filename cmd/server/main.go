// Package main is the entry point for the HR service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	grpcdelivery "github.com/mutugading/goapps-backend/services/hr/internal/delivery/grpc"
	httpdelivery "github.com/mutugading/goapps-backend/services/hr/internal/delivery/http"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/audit"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/messaging"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/postgres"
	redisinfra "github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/redis"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/storage"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/tracing"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Service failed")
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load(os.Getenv("HR_CONFIG"))
	if err != nil {
		return err
	}

	logger.Setup(logger.Options{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})

	log.Info().
		Str("service", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Env).
		Msg("Starting HR service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup tracing (optional)
	cleanupTracing := setupTracing(ctx, cfg)
	defer cleanupTracing()

	// Setup database
	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeWithLog("database", db.Close)
	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Msg("Database connection established")

	// Setup Redis cache (optional - graceful degradation)
	redisClient, cache := setupCache(ctx, cfg)
	if redisClient != nil {
		defer closeWithLog("redis", redisClient.Close)
	}

	// Setup token blacklist (optional - fail-open)
	var blacklist auth.BlacklistChecker
	if tb, err := redisinfra.NewTokenBlacklist(ctx, &cfg.AuthRedis); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to auth Redis, token revocation is not enforced")
	} else {
		blacklist = tb
		defer closeWithLog("auth redis", tb.Close)
	}

	// Setup change event publisher
	publisher, err := messaging.NewPublisher(ctx, cfg.Events)
	if err != nil {
		return err
	}
	defer closeWithLog("event publisher", publisher.Close)

	// Setup photo storage (optional)
	var photos app.PhotoStorage
	if cfg.Storage.Enabled {
		ps, err := storage.NewPhotoStorage(ctx, &cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to setup photo storage, uploads are disabled")
		} else {
			photos = ps
		}
	}

	repo := postgres.NewEmployeeRepository(db)
	deps := app.Deps{
		Cache:  cache,
		Audit:  audit.NewPostgresLogger(db),
		Events: publisher,
	}
	handler := grpcdelivery.NewEmployeeHandler(repo, photos, deps)
	verifier := auth.NewVerifier(&cfg.JWT, blacklist)

	checks := map[string]httpdelivery.Check{"database": db.Health}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}

	return serve(ctx, cfg, verifier, handler, checks)
}

// serve runs the gRPC and HTTP servers until ctx is cancelled or one of them fails.
func serve(
	ctx context.Context,
	cfg *config.Config,
	verifier *auth.Verifier,
	handler grpcdelivery.EmployeeServiceServer,
	checks map[string]httpdelivery.Check,
) error {
	grpcServer := grpcdelivery.NewServer(&cfg.Server, cfg.RateLimit, verifier, handler)

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", cfg.Server.GRPCPort),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway connection: %w", err)
	}
	defer closeWithLog("gateway connection", conn.Close)

	httpServer := httpdelivery.NewServer(&cfg.Server, cfg.CORS, conn, verifier, checks)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down servers...")

		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
		grpcServer.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}

// setupTracing initializes tracing and returns a cleanup function.
func setupTracing(ctx context.Context, cfg *config.Config) func() {
	provider, err := tracing.NewProvider(ctx, &cfg.Tracing, cfg.App)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to setup tracing, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shutdown tracing provider")
		}
	}
}

// setupCache creates the Redis employee cache (optional - graceful degradation).
func setupCache(ctx context.Context, cfg *config.Config) (*redisinfra.Client, app.Cache) {
	client, err := redisinfra.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without cache")
		return nil, nil
	}

	log.Info().
		Str("host", cfg.Redis.Host).
		Int("port", cfg.Redis.Port).
		Msg("Redis connection established")

	cache := redisinfra.NewEmployeeCache(client, cfg.Redis.CacheTTL)
	return client, grpcdelivery.NewInstrumentedCache(cache, "employee")
}

func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("Failed to close resource")
	}
}
