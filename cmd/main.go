package main

import (
	"context"
	"errors"
	"net"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/looking-sharp/User-Authentication-Microservice/config"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/handler"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/repository"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/router"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/service"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/database"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/health"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/metrics"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if err := run(config); err != nil {
		logger.GetLogger().Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.GetLogger().Info("Server stopped")
	logger.Sync()
}

// run wires the service and blocks until a signal or a server failure.
// Deferred cleanup runs before it returns.
func run(config *configs.Config) error {
	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.UsesDefaultSecret() {
		logger.GetLogger().Warn("JWT_SECRET is not set, using the insecure development secret")
	}

	db, err := database.Open(config.Database, config.App.Environment)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.GetLogger().Info("Database migrated successfully")

	m := metrics.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	transactor := repository.NewTransactor(db)

	revocationOpts := []service.RevocationOption{service.WithRevocationMetrics(m)}

	var redisPing health.PingFunc
	if config.Redis.Enabled {
		rdb, err := redis.NewClient(config)
		if err != nil {
			// The store stays authoritative, so run without the cache
			logger.GetLogger().Warn("Redis unavailable, revocation cache disabled", zap.Error(err))
		} else {
			cache := redis.NewRevocationCache(rdb)
			defer cache.Close()
			revocationOpts = append(revocationOpts, service.WithRevocationCache(cache))
			redisPing = cache.Ping
		}
	}

	// Services
	revocations := service.NewRevocationService(revokedRepo, revocationOpts...)
	authService := service.NewAuthService(
		userRepo,
		transactor,
		revocations,
		service.NewPasswordHasher(config.Auth.BcryptCost),
		service.NewJWTService(config.JWT),
		config.Auth.ShortTokenLength,
	)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	authService.Startup(startupCtx)
	cancelStartup()

	// Health
	monitor := health.NewMonitor(30*time.Second, logger.GetLogger())
	monitor.Register("database", &health.PingChecker{Ping: func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}}, true)
	monitor.Register("redis", &health.PingChecker{Ping: redisPing}, false)

	// Handlers
	adminHandler, err := handler.NewAdminHandler(authService)
	if err != nil {
		return fmt.Errorf("failed to load admin templates: %w", err)
	}

	engine := router.NewRouter(
		handler.NewAuthHandler(authService, m),
		handler.NewHealthHandler(monitor),
		adminHandler,

		middleware.NewValidationMiddleware(),
		m,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if config.GRPC.Port != "" {
		grpcServer := health.NewGRPCServer(monitor, constants.ServiceName)

		g.Go(func() error {
			lis, err := net.Listen("tcp", ":"+config.GRPC.Port)
			if err != nil {
				return err
			}
			logger.GetLogger().Info("gRPC health server starting", zap.String("port", config.GRPC.Port))
			return grpcServer.Serve(lis)
		})

		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	monitor.Start()
	defer monitor.Stop()

	g.Go(func() error {
		<-gctx.Done()
		logger.GetLogger().Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
