// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobrunner/potholemap/internal/adapters/blob"
	"github.com/jobrunner/potholemap/internal/adapters/cache"
	httpAdapter "github.com/jobrunner/potholemap/internal/adapters/http"
	"github.com/jobrunner/potholemap/internal/adapters/metrics"
	natsAdapter "github.com/jobrunner/potholemap/internal/adapters/nats"
	"github.com/jobrunner/potholemap/internal/adapters/store"
	tlsAdapter "github.com/jobrunner/potholemap/internal/adapters/tls"
	"github.com/jobrunner/potholemap/internal/application"
	"github.com/jobrunner/potholemap/internal/config"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         output.PotholeStore
	Photos        output.PhotoStore
	URLCache      *cache.RedisCache
	QueryService  *application.QueryService
	IngestService *application.IngestService
	HealthService *application.HealthService
	HTTPServer    *httpAdapter.Server
	TLSServer     *tlsAdapter.Server
	Consumer      *natsAdapter.Consumer
	Metrics       *metrics.Collector
	MetricsServer *metrics.Server
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("potholemap")
		app.MetricsServer = metrics.NewServer(
			cfg.Metrics.Port,
			cfg.Metrics.Path,
			logger,
		)
	}

	var metricsCollector output.MetricsCollector
	if app.Metrics != nil {
		metricsCollector = app.Metrics
	} else {
		metricsCollector = &output.NoOpMetrics{}
	}

	// Initialize record store
	recordStore, err := initStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initializing record store: %w", err)
	}
	app.Store = recordStore

	// Initialize photo store
	photos, photoDir, err := initPhotos(ctx, cfg.Photos)
	if err != nil {
		return nil, fmt.Errorf("initializing photo store: %w", err)
	}
	app.Photos = photos

	// Initialize the optional photo-URL cache
	var urlCache output.URLCache
	if cfg.Cache.Enabled() {
		app.URLCache = cache.NewRedisCache(cache.Config{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err := app.URLCache.Ping(ctx); err != nil {
			logger.Warn("URL cache unreachable at startup", "error", err)
		}
		urlCache = app.URLCache
	}

	// Initialize query service
	app.QueryService = application.NewQueryService(
		app.Store,
		app.Photos,
		urlCache,
		metricsCollector,
		logger,
		application.QueryServiceConfig{
			DefaultLimit: cfg.Query.DefaultResults,
			MaxLimit:     cfg.Query.MaxResults,
			URLTTL:       cfg.Photos.URLTTL,
		},
	)

	// Initialize ingest service
	app.IngestService = application.NewIngestService(
		app.Store,
		app.Photos,
		metricsCollector,
		logger,
		cfg.Photos.KeyPrefix,
	)

	// Initialize health service
	app.HealthService = application.NewHealthService(app.Store)

	// Initialize HTTP server
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.QueryService,
		app.IngestService,
		app.HealthService,
		logger,
		cfg.Query.Timeout,
		photoDir,
	)

	if app.Metrics != nil {
		app.HTTPServer.Router().Use(app.Metrics.Middleware)
	}

	// Initialize TLS server if enabled
	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(
			tlsAdapter.Config{
				Enabled:  cfg.TLS.Enabled,
				Domains:  cfg.TLS.Domains,
				Email:    cfg.TLS.Email,
				CacheDir: cfg.TLS.CacheDir,
				Staging:  cfg.TLS.Staging,
			},
			app.HTTPServer.Router(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	// Initialize NATS consumer if enabled
	if cfg.NATS.Enabled {
		consumer, err := natsAdapter.NewConsumer(
			natsAdapter.Config{
				URL:     cfg.NATS.URL,
				Subject: cfg.NATS.Subject,
				Durable: cfg.NATS.Durable,
			},
			app.IngestService,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initializing NATS consumer: %w", err)
		}
		app.Consumer = consumer
	}

	return app, nil
}

// Start starts all application components.
func (a *App) Start(ctx context.Context) error {
	// Start NATS consumer
	if a.Consumer != nil {
		if err := a.Consumer.Start(ctx); err != nil {
			return fmt.Errorf("starting NATS consumer: %w", err)
		}
	}

	// Start metrics server in background
	if a.MetricsServer != nil {
		go func() {
			if err := a.MetricsServer.Start(); err != nil && err.Error() != "http: Server closed" {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start server
	if a.Config.TLS.Enabled && a.TLSServer != nil {
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}
	return a.HTTPServer.Start()
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop the NATS consumer first so no new reports arrive mid-shutdown
	if a.Consumer != nil {
		a.Consumer.Close()
	}

	// Shutdown metrics server
	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
	}

	// Close the URL cache
	if a.URLCache != nil {
		if err := a.URLCache.Close(); err != nil {
			a.Logger.Error("URL cache close error", "error", err)
		}
	}

	// Close the record store
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Error("record store close error", "error", err)
		}
	}

	return nil
}

// initStore initializes the configured record store.
func initStore(ctx context.Context, cfg config.DatabaseConfig) (output.PotholeStore, error) {
	pool := store.Config{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}

	switch cfg.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Postgres.DSN(), pool)

	case "sqlite":
		return store.NewSQLiteStore(ctx, cfg.SQLitePath, pool)

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// initPhotos initializes the configured photo store. The returned
// directory is non-empty only for the local backend, where this process
// also serves the photo files itself.
func initPhotos(ctx context.Context, cfg config.PhotosConfig) (output.PhotoStore, string, error) {
	switch cfg.Backend {
	case "s3":
		s, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		return s, "", err

	case "azure":
		s, err := blob.NewAzureStore(blob.AzureConfig{
			Container:   cfg.Azure.Container,
			AccountName: cfg.Azure.AccountName,
			AccountKey:  cfg.Azure.AccountKey,
		})
		return s, "", err

	case "local":
		s := blob.NewLocalStore(cfg.Local.Path, cfg.Local.BaseURL)
		return s, s.BasePath(), nil

	default:
		return nil, "", fmt.Errorf("unsupported photo backend: %s", cfg.Backend)
	}
}
