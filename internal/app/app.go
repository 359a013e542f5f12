// Package app provides the main application lifecycle management for the
// CreatorPulse service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/jhawaritvik/CreatorPulse/internal/api"
	"github.com/jhawaritvik/CreatorPulse/internal/config"
	"github.com/jhawaritvik/CreatorPulse/internal/database"
	"github.com/jhawaritvik/CreatorPulse/internal/delivery"
	"github.com/jhawaritvik/CreatorPulse/internal/llm"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/mailer"
	"github.com/jhawaritvik/CreatorPulse/internal/metrics"
	"github.com/jhawaritvik/CreatorPulse/internal/pipeline"
	"github.com/jhawaritvik/CreatorPulse/internal/report"
	"github.com/jhawaritvik/CreatorPulse/internal/sources"
	"github.com/jhawaritvik/CreatorPulse/internal/worker"
)

const (
	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	redisPingTimeout = 2 * time.Second
)

// App holds the wired service and its lifecycle.
type App struct {
	config      *config.Config
	logger      logger.Logger
	db          *sqlx.DB
	redisClient *redis.Client
	sweep       *worker.Sweep
	httpServer  *http.Server
	version     string
}

// Options configures App creation.
type Options struct {
	ConfigPath string
	Version    string
}

// New loads configuration and wires every component.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	appLogger = appLogger.With(
		logger.String("service", "creatorpulse"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Redis is optional; without it source-content previews just refetch.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
			appLogger.Warn("redis unreachable, content cache disabled", logger.Error(pingErr))
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}

	mx := metrics.NewDefault()

	newsletterRepo := database.NewNewsletterRepository(db)
	recipientRepo := database.NewRecipientRepository(db)
	clientRepo := database.NewClientRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	var cache *sources.ContentCache
	if redisClient != nil {
		cache = sources.NewContentCache(redisClient, cfg.Sources.ContentCacheTTL)
	}
	enricher := sources.NewEnricher(cfg.Sources.FetchTimeout, appLogger)
	sourceSvc := sources.NewService(
		sourceRepo,
		[]sources.Adapter{
			sources.NewRSSAdapter(cfg.Sources.FetchTimeout),
			sources.NewYouTubeAdapter(cfg.Sources.FetchTimeout),
			sources.NewRedditAdapter(cfg.Sources.FetchTimeout),
			sources.NewBlogAdapter(cfg.Sources.FetchTimeout),
		},
		enricher,
		cache,
		mx,
		appLogger,
		cfg.Sources.PerSourceLimit,
	)

	backend := llm.NewClient(llm.WithMaxTokens(cfg.LLM.MaxTokens))
	synthesizer := report.NewSynthesizer(backend, report.Config{
		Enabled:          cfg.LLM.Enabled,
		Model:            cfg.LLM.Model,
		MaxAttempts:      cfg.LLM.MaxAttempts,
		RetryDelay:       cfg.LLM.RetryDelay,
		MaxItems:         cfg.Options.MaxItems,
		FallbackMaxItems: cfg.Options.FallbackMaxItems,
	}, appLogger)

	generator := pipeline.NewGenerator(
		sourceSvc, synthesizer, newsletterRepo,
		cfg.Ranking.SourceWeights, mx, appLogger,
	)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, appLogger)
	deliverySvc := delivery.NewService(
		newsletterRepo, recipientRepo, clientRepo,
		smtpMailer, mx, appLogger,
	)

	sweep := worker.NewSweep(newsletterRepo, deliverySvc, cfg.Sweep.Interval, mx, appLogger)

	router := api.NewRouter(
		generator, deliverySvc, newsletterRepo, clientRepo,
		sourceRepo, sourceSvc, smtpMailer,
		db, redisClient, appLogger, cfg.Debug,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		redisClient: redisClient,
		sweep:       sweep,
		httpServer:  httpServer,
		version:     opts.Version,
	}, nil
}

// Run starts the sweep and HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.config.Sweep.Enabled {
		a.sweep.Start(ctx)
	} else {
		a.logger.Warn("scheduling sweep disabled by config")
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", logger.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down gracefully", logger.String("signal", sig.String()))
	case err := <-serverErr:
		a.logger.Error("http server error", logger.Error(err))
		runErr = err
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	if a.config.Sweep.Enabled {
		a.sweep.Stop()
	}
	a.shutdownHTTPServer()

	a.logger.Info("service stopped")
	return runErr
}

func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("http server stopped")
	}
}

// Close releases database and cache connections.
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis client", logger.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}
