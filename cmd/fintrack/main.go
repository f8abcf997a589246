package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/persist"
	"fintrack/internal/store"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.LogError(context.Background(), "fintrack stopped with error", err, log.OpShutdown, log.NewFields())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(parent context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := cli.ShutdownContext(parent, logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close storage", log.FieldError, err.Error())
		}
	}()

	rec := metrics.New(true)

	synchronizer := persist.New(res.Slot,
		persist.WithKey(cfg.StateKey),
		persist.WithLogger(logger),
		persist.WithSaveHook(rec.PersistResult))

	st := store.New(synchronizer,
		store.WithStrictReferences(cfg.StrictReferences),
		store.WithLogger(logger),
		store.WithMetrics(rec))
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to drain pending writes", log.FieldError, err.Error())
		}
	}()

	if res.Publisher != nil {
		notifier := amqp.NewNotifier(res.Publisher, logger, amqp.WithPublishHook(rec.PublishResult))
		unsubscribe := st.Subscribe(notifier.Notify)
		// Registered after the store's deferred Close so it runs first.
		defer func() {
			unsubscribe()
			if err := notifier.Close(); err != nil {
				logger.Warn("Failed to close AMQP publisher", log.FieldError, err.Error())
			}
		}()
	}

	srv, err := apphttp.NewServer(st, apphttp.Options{
		Addr:               ":" + cfg.Port,
		Location:           cfg.Location(),
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Metrics:            rec,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			log.FieldBackend, cfg.StorageBackend,
			"strict_references", cfg.StrictReferences,
			"notifications", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		loaded := st.Hydrate(gctx)
		logger.Info("State hydrated", "loaded", loaded, log.FieldStateVersion, st.Version())
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.LogError(shutdownCtx, "Server shutdown error", err, log.OpShutdown, log.NewFields())
			return err
		}
		return nil
	})

	return g.Wait()
}
