package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/adapters/backend"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/adapters/storage"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/core/services"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/handlers"
	"github.com/Noura-Darwazeh/delivery-admin-api/internal/middleware"
	"github.com/Noura-Darwazeh/delivery-admin-api/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	"gopkg.in/natefinch/lumberjack.v2"
)

// @title Delivery Admin API
// @version 1.0
// @description Backend-for-frontend serving the delivery-logistics admin UI: currency state, exchange rates, and the processed orders list.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.New(cfg.StoragePath, logger)
	if err != nil {
		logger.Error("Failed to open local storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Local cache storage opened", slog.String("path", cfg.StoragePath))

	backendClient := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout, logger)

	currencySvc := services.NewCurrencyCacheService(
		backendClient, backendClient, store, logger,
		services.WithCacheDuration(cfg.RateCacheDuration),
		services.WithLocale(cfg.Locale),
	)
	orderSvc := services.NewOrderService(backendClient, currencySvc)

	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.BackendTimeout+5*time.Second)
	currencySvc.Initialize(initCtx)
	cancelInit()
	currencySvc.StartAutoRefresh(cfg.RateRefreshInterval)
	defer currencySvc.Dispose()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimit); err == nil {
		r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))
	} else {
		logger.Warn("Invalid RATE_LIMIT, rate limiting disabled", slog.String("value", cfg.RateLimit))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, currencySvc, orderSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-shutdownCtx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		logger.Error("Server failed to run", slog.String("error", serveErr.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("HTTP server stopped gracefully")
}

// newLogger builds the JSON slog logger, teeing into a rotating file when
// LOG_FILE is configured.
func newLogger(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return slog.New(slog.NewJSONHandler(out, nil))
}
