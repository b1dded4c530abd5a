package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/daye10/textsearch/internal/analytics"
	"github.com/daye10/textsearch/internal/cache"
	"github.com/daye10/textsearch/internal/engine"
	"github.com/daye10/textsearch/internal/server"
	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/tokenizer"
	"github.com/daye10/textsearch/pkg/config"
	"github.com/daye10/textsearch/pkg/health"
	"github.com/daye10/textsearch/pkg/kafka"
	"github.com/daye10/textsearch/pkg/logger"
	"github.com/daye10/textsearch/pkg/metrics"
	"github.com/daye10/textsearch/pkg/middleware"
	"github.com/daye10/textsearch/pkg/postgres"
	pkgredis "github.com/daye10/textsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "source", cfg.Index.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metrics.StartServer(ctx, cfg.Metrics.Port)
	}

	newSource, pgClient, err := buildSourceFactory(cfg)
	if err != nil {
		slog.Error("failed to configure document source", "error", err)
		os.Exit(1)
	}
	if pgClient != nil {
		defer pgClient.Close()
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	statsStore := analytics.NewStore()
	aggregator := analytics.NewAggregator(cfg.Kafka, statsStore)
	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator stopped", "error", err)
		}
	}()

	svc := engine.New(tokenizer.NewSimple(), cfg.Suggest.K)
	rebuilder := server.NewRebuilder(svc, newSource, queryCache, m, collector)

	if _, err := rebuilder.Rebuild(ctx); err != nil {
		slog.Error("initial index build failed", "error", err)
		os.Exit(1)
	}
	rebuilder.StartLoop(ctx, cfg.Index.RebuildInterval)

	ingestConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, rebuilder.HandleIngestEvent)
	go func() {
		if err := ingestConsumer.Start(ctx); err != nil {
			slog.Error("ingest consumer stopped", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if !svc.Ready() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no snapshot built"}
		}
		snap := svc.Snapshot()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d docs, %d terms", snap.DocCount, snap.TermCount()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.NewHandler(svc, rebuilder, queryCache, collector, statsStore, m, cfg.Search)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/and", h.BooleanAnd)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("POST /api/v1/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", h.Analytics)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

// buildSourceFactory returns a SourceFactory for the configured document
// source, plus the postgres client when one was opened.
func buildSourceFactory(cfg *config.Config) (server.SourceFactory, *postgres.Client, error) {
	switch cfg.Index.Source {
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return func(ctx context.Context) (source.Source, error) {
			return source.NewPostgres(ctx, client)
		}, client, nil
	default:
		dir := cfg.Index.TextDir
		ext := cfg.Index.Extension
		return func(ctx context.Context) (source.Source, error) {
			return source.NewDir(dir, ext)
		}, nil, nil
	}
}
