// Command scribed runs the Scribe OCR daemon: it loads configuration, opens
// the job registry, and serves the HTTP API until interrupted.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/daemon"
	"scribe/internal/jobs"
	"scribe/internal/logging"
	"scribe/internal/ocr/mistral"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		log.Fatalf("open job store: %v", err)
	}

	client := mistral.NewClient(mistral.Config{
		APIKey:         cfg.Mistral.APIKey,
		BaseURL:        cfg.Mistral.BaseURL,
		Model:          cfg.Mistral.Model,
		TimeoutSeconds: cfg.Mistral.TimeoutSeconds,
	})
	service := api.NewService(cfg, client, logger)

	d, err := daemon.New(cfg, store, service, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("scribed shutting down")
}
