package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loan-assistant/internal/api"
	"loan-assistant/internal/common/aws"
	"loan-assistant/internal/common/config"
	"loan-assistant/internal/common/database"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/observability"
	"loan-assistant/internal/conversation"
	"loan-assistant/internal/extract"
	"loan-assistant/internal/genai"
	"loan-assistant/internal/ledger"
	"loan-assistant/internal/notify"
	"loan-assistant/internal/profile"
	"loan-assistant/internal/render"
	"loan-assistant/internal/session"
	"loan-assistant/internal/underwriting"
)

// retryWithBackoff keeps attempting a startup dependency until it comes up,
// doubling the wait between attempts.
func retryWithBackoff(connect func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, dependency string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = connect()
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			log.Warn("Dependency not ready, retrying",
				zap.String("dependency", dependency),
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s not ready after %d attempts: %w", dependency, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Session store ---
	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
		store = session.NewRedisStore(redisClient.GetClient(), ttl)
	default:
		store = session.NewMemoryStore()
		zapLog.Info("Using in-memory session store")
	}
	sessions := session.NewManager(store, log)

	// --- Domain services ---
	profiles, err := profile.NewSeedStore(log)
	if err != nil {
		zapLog.Fatal("seed book load failed", zap.Error(err))
	}

	// engine and synthesizer share one source across concurrent sessions
	rng := underwriting.NewLockedRand(time.Now().UnixNano())
	engine := underwriting.New(rng, log)
	synth := profile.NewSynthesizer(rng, log)

	pgLedger := ledger.NewPostgresLedger(pg.GetDB(), log)
	indexer := ledger.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	sink := ledger.NewCompositeSink(pgLedger, indexer, log)

	opts := conversation.Options{Ledger: sink}

	if cfg.APIs.Renderer.BaseURL != "" {
		opts.Renderer = render.NewClient(
			cfg.APIs.Renderer.BaseURL,
			time.Duration(cfg.APIs.Renderer.Timeout)*time.Millisecond,
			log,
		)
	}

	if cfg.APIs.GenAI.Enabled {
		opts.Enhancer = genai.NewClient(
			cfg.APIs.GenAI.BaseURL,
			cfg.APIs.GenAI.APIKey,
			cfg.APIs.GenAI.Model,
			time.Duration(cfg.APIs.GenAI.Timeout)*time.Millisecond,
			log,
		)
	}

	var emailSender notify.EmailSender
	var smsSender notify.SMSSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		emailSender = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = snsClient
	}
	if emailSender != nil || smsSender != nil {
		opts.Notifier = notify.NewDispatcher(emailSender, smsSender, cfg.Notifications.Email.FromEmail, log)
	}

	machine := conversation.NewMachine(extract.New(), engine, profiles, synth, opts, log)
	server := api.NewServer(machine, sessions, pgLedger, log)
	server.SetObservability(obs)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond,
	)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
