package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/seafresh/backend/config"
	httpDelivery "github.com/seafresh/backend/internal/delivery/http"
	"github.com/seafresh/backend/internal/domain"
	"github.com/seafresh/backend/internal/infrastructure/cache"
	"github.com/seafresh/backend/internal/infrastructure/catalog"
	"github.com/seafresh/backend/internal/infrastructure/storage"
	"github.com/seafresh/backend/internal/infrastructure/vision"
	"github.com/seafresh/backend/internal/logging"
	"github.com/seafresh/backend/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting SeaFresh backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("cache_type", cfg.Cache.Type),
	)

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	catalogRepo, closeCatalog, err := newCatalog(startupCtx, cfg, logger)
	if err != nil {
		logger.Fatal("catalog initialisation failed", zap.Error(err))
	}
	defer closeCatalog()

	visionClient := newVisionClient(cfg, logger)
	if visionClient.Configured() {
		logger.Info("vision provider configured", zap.String("base_url", cfg.Vision.BaseURL))
	} else {
		logger.Warn("vision API key not set, analysis will use mock data")
	}

	service := usecase.NewRecognitionService(
		visionClient,
		catalogRepo,
		storage.NewOSImageStore(cfg.Storage.ImageRoot),
		usecase.RecognitionServiceConfig{
			Reporter: usecase.NewZapReporter(logger),
		},
	)

	handler := httpDelivery.NewHandler(service, logger, cfg.Server.MaxUploadBytes)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server listening", zap.String("addr", addr))
	if err := serveHTTPServer(server, shutdownTimeout, logger, nil, nil); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newCatalog opens the product database and wraps it in the read cache
// when catalog.cache_ttl is positive. The returned func releases everything.
func newCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.CatalogRepository, func(), error) {
	logLevel := gormlogger.Warn
	if cfg.Logging.Development {
		logLevel = gormlogger.Info
	}

	db, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN, logLevel)
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, sqlDB.Close)
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
		}
	}

	repo := catalog.NewRepository(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("auto migrate: %w", err)
	}

	// sqlite is the local development database
	if cfg.Catalog.Driver == catalog.DriverSQLite {
		if err := repo.Seed(ctx, catalog.DemoProducts); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	if cfg.Catalog.CacheTTL <= 0 {
		return repo, closeAll, nil
	}

	var backend domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCacheFromURL(ctx, cfg.Cache.RedisURL, "seafresh:")
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, redisCache.Close)
		backend = redisCache
	default:
		memoryCache := cache.NewMemoryCache(0)
		closers = append(closers, memoryCache.Close)
		backend = memoryCache
	}

	logger.Info("catalog cache enabled",
		zap.String("type", cfg.Cache.Type),
		zap.Duration("ttl", cfg.Catalog.CacheTTL),
	)
	return catalog.NewCachedRepository(repo, backend, cfg.Catalog.CacheTTL, logger), closeAll, nil
}

func newVisionClient(cfg *config.Config, logger *zap.Logger) *vision.Client {
	client := vision.NewClient(cfg.Vision.APIKey, cfg.Vision.BaseURL, logger)
	client.SetTimeout(cfg.Vision.Timeout)
	client.SetRateLimit(cfg.Vision.RequestsPerSecond, cfg.Vision.Burst)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	return client
}

// serveHTTPServer runs server until it fails or a shutdown signal arrives,
// then drains in-flight requests for up to shutdownTimeout. A nil listener
// uses server.Addr; a nil signalCh listens for SIGINT and SIGTERM.
func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	if signalCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signalCh = ch
	}

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-signalCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
