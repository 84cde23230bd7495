package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tradejournal/internal/amqp"
	"tradejournal/internal/backend"
	"tradejournal/internal/cli"
	apphttp "tradejournal/internal/http"
	"tradejournal/internal/middleware/ratelimit"
	"tradejournal/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal("Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, "journal")
	logger.Info(cli.Banner("journal", cfg))

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal("Invalid backend configuration", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal("Failed to initialize data backend", err)
	}
	logger.Info("Data backend ready", "backend", backendCfg.Type)

	var storeOpts []services.TableStoreOption
	var notifier *amqp.Client
	if cfg.AMQPURL != "" {
		notifier, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Saves must keep working without the broker.
			logger.Warn("AMQP unavailable, sheet mirroring disabled", "error", err)
		} else {
			storeOpts = append(storeOpts, services.WithNotifier(notifier))
			logger.Info("AMQP notifications enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	store := services.NewTableStore(result.Backend, storeOpts...)
	captures := services.NewCaptureStore(cfg.CapturesDir)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:     store,
		Sessions:  services.NewSessionService(store, captures),
		Fiches:    services.NewFicheArchive(cfg.FichesDir),
		Captures:  captures,
		Settings:  services.NewCEOSettings(cfg.SettingsPath),
		Ready:     result.Ready,
		Logger:    logger,
		RateLimit: ratelimit.DefaultConfig(),
	})

	_, done := cli.GracefulShutdown(30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if notifier != nil {
			if err := notifier.Close(); err != nil {
				slog.Warn("AMQP close error", "error", err)
			}
		}
		if err := result.Close(); err != nil {
			slog.Warn("Backend close error", "error", err)
		}
	})

	logger.Info("Starting journal server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal("Server error", err)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
