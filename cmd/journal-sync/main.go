package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradejournal/internal/amqp"
	"tradejournal/internal/backend"
	"tradejournal/internal/cli"
	"tradejournal/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal("Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, "journal-sync")
	logger.Info(cli.Banner("journal-sync", cfg))

	if cfg.AMQPURL == "" {
		cli.Fatal("Mirror worker needs a broker", errors.New("AMQP_URL is not set"))
	}
	if cfg.DataBackend == string(backend.SheetsBackend) {
		cli.Fatal("Nothing to mirror", fmt.Errorf("primary backend is already %s", backend.SheetsBackend))
	}

	factory := backend.NewFactory(logger.Logger)

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal("Invalid backend configuration", err)
	}
	source, err := factory.CreateBackend(context.Background(), sourceCfg)
	if err != nil {
		cli.Fatal("Failed to initialize primary backend", err)
	}
	defer source.Close()

	targetCfg := backend.MirrorConfig(cfg)
	if err := targetCfg.Validate(); err != nil {
		cli.Fatal("Invalid mirror configuration", err)
	}
	target, err := factory.CreateBackend(context.Background(), targetCfg)
	if err != nil {
		cli.Fatal("Failed to initialize Google Sheets mirror", err)
	}
	defer target.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal("Failed to initialize AMQP client", err)
	}
	defer client.Close()

	mirror := worker.NewMirror(source.Backend, target.Backend, cfg.MirrorConcurrency)

	ctx, done := cli.GracefulShutdown(30*time.Second, nil)

	start := time.Now()
	n, err := mirror.MirrorAll(ctx)
	if err != nil {
		// Later saves are still mirrored as their messages arrive.
		logger.Error("Startup mirror incomplete", "copied", n, "error", err)
	} else {
		logger.Info("Startup mirror complete", "copied", n, "duration", time.Since(start))
	}

	logger.Info("Consuming sheet saved messages", "queue", cfg.AMQPQueue)
	if err := client.ConsumeSheetSaved(ctx, mirror.HandleSheetSaved); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		return
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
