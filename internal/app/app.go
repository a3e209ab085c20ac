package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godilite/remark-server/internal/config"
	"github.com/godilite/remark-server/internal/generator"
	handler "github.com/godilite/remark-server/internal/grpc"
	"github.com/godilite/remark-server/internal/repository"
	"github.com/godilite/remark-server/internal/service"
	"github.com/godilite/remark-server/pkg/cache"
	dbbuilder "github.com/godilite/remark-server/pkg/database"
	grpcsrv "github.com/godilite/remark-server/pkg/grpc/server"
	"github.com/godilite/remark-server/pkg/metrics"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// maxRequestSize leaves room for base64 evidence files in GenerateRemarks.
const maxRequestSize = 32 << 20

// openDB is replaced in tests to observe the pool.
var openDB = dbbuilder.New

type App struct {
	logger        *zap.Logger
	dbPool        *sql.DB
	cache         *cache.Cache
	grpcServer    *grpcsrv.Server
	metricsServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := openDB(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithSchema(repository.Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	// A nil *cache.Cache must not reach the handlers as a non-nil Cacher.
	var cacher handler.Cacher
	var cacheClient *cache.Cache
	release := func() {
		if cacheClient != nil {
			_ = cacheClient.Close()
		}
		_ = dbPool.Close()
	}
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			release()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, run cache disabled")
	}

	var gen service.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := generator.NewGeminiGenerator(ctx, cfg.GeminiAPIKey,
			generator.WithModel(cfg.GeminiModel),
			generator.WithLogger(logger),
		)
		if err != nil {
			release()
			return nil, fmt.Errorf("generator init failed: %w", err)
		}
		gen = gemini
		logger.Info("Remark generator initialized", zap.String("model", gemini.Model()))
	} else {
		logger.Warn("GEMINI_API_KEY not set, GenerateRemarks will be unavailable")
	}

	recorder := metrics.NewRecorder()

	runRepo := repository.NewRunRepository(dbPool)

	remarkService := service.NewRemarkService(runRepo, gen, logger,
		service.WithFallback(cfg.FallbackRemark),
		service.WithGenerationTimeout(cfg.GenerationTimeout),
		service.WithMetrics(recorder),
	)

	grpcHandlers := handler.NewGRPCHandlers(remarkService, cacher, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithMaxRecvMsgSize(maxRequestSize),
		grpcsrv.WithUnaryInterceptors(
			grpcsrv.RecoveryInterceptor(logger),
			grpcsrv.MetricsInterceptor(recorder),
		),
	)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterRemarkServer(s, grpcHandlers)
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return &App{
		logger:        logger,
		dbPool:        dbPool,
		cache:         cacheClient,
		grpcServer:    grpcServer,
		metricsServer: metricsServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	if a.metricsServer != nil {
		go func() {
			a.logger.Info("metrics server starting", zap.String("addr", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
