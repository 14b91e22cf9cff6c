package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/paon-social/searchd/internal/config"
	"github.com/paon-social/searchd/internal/feed"
	"github.com/paon-social/searchd/internal/httpserver"
	"github.com/paon-social/searchd/internal/httpserver/deps"
	"github.com/paon-social/searchd/internal/indexer"
	"github.com/paon-social/searchd/internal/locale"
	"github.com/paon-social/searchd/internal/logger"
	"github.com/paon-social/searchd/internal/query"
	"github.com/paon-social/searchd/internal/redis"
	"github.com/paon-social/searchd/internal/search"
	"github.com/paon-social/searchd/internal/store/postgres"
	"github.com/paon-social/searchd/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *postgres.Store
	indexer     *indexer.Indexer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store, err := postgres.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Postgres: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Postgres initialized successfully")

	// Locale table for language: normalization
	locales := locale.Default()
	if cfg.LocalesFile != "" {
		locales, err = locale.LoadFile(cfg.LocalesFile)
		if err != nil {
			loggerClient.Errorf("Failed to load locales file %s: %v", cfg.LocalesFile, err)
			os.Exit(1)
		}
		loggerClient.Info("loaded locales file",
			logger.String("file", cfg.LocalesFile),
			logger.Int("locales", locales.Len()))
	}

	bookmarkFeed := feed.New(redisClient, store, loggerClient)

	transformer := query.NewTransformer(
		store,
		store,
		locales,
		bookmarkFeed,
		cfg.LocalDomain,
		loggerClient,
	)

	var backend search.Backend
	if cfg.SearchEnabled {
		meili := search.NewMeiliBackend(cfg.MeiliHost, cfg.MeiliAPIKey, cfg.MeiliPrefix, loggerClient)
		if err := meili.EnsureSettings(context.Background()); err != nil {
			loggerClient.Warn("failed to push index settings, continuing with existing ones",
				logger.Error(err))
		}
		backend = meili
	} else {
		loggerClient.Info("search disabled, all queries will return empty results")
		backend = search.NewNoopBackend()
	}

	searchService := search.NewService(backend, transformer, store, loggerClient)

	// Create manual drain trigger channel
	indexTrigger := make(chan struct{}, 1)

	ix := indexer.New(
		redisClient,
		store,
		backend,
		loggerClient,
		cfg.IndexInterval,
		cfg.IndexBatchSize,
		indexTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		RedisClient:   redisClient,
		Store:         store,
		SearchService: searchService,
		IndexTrigger:  indexTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		indexer:     ix,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting searchd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("searchd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the indexing queue drain loop
	if err := a.indexer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start indexer: %w", err)
	}
	a.logger.Info("indexer started",
		logger.Duration("interval", a.cfg.IndexInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.indexer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.close()
	a.logger.Info("searchd stopped cleanly")
	return nil
}

// Deploy runs a full reindex of every searchable status and exits.
func (a *App) Deploy() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.indexer.Deploy(ctx)
	a.close()
	return err
}

func (a *App) close() {
	a.store.Close()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("Redis closed cleanly")
		}
	}
}
