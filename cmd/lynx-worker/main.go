package main

import (
	"context"
	"errors"
	"os"

	"lynx/internal/cli"
	"lynx/internal/log"
	"lynx/internal/worker"
)

func main() {
	cfg, logger := cli.MustLoadConfig()
	logger.Info("Starting lynx-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	b, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer b.Close()

	if b.Jobs == nil {
		logger.Error("Export worker cannot run without a broker connection", "exchange", cfg.AMQPExchange)
		os.Exit(1)
	}
	if b.Publisher == nil {
		logger.Info("Google Sheets disabled, exports are written to disk only", "export_dir", cfg.ExportDir)
	}

	w := worker.NewExportWorker(b.Reports, b.Exports, b.Publisher, logger)

	logger.Info("Consuming export jobs", "queue", cfg.AMQPQueue, "export_dir", cfg.ExportDir)
	if err := b.Jobs.ConsumeExportJobs(ctx, w.HandleExportJob); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export job consumption failed", log.FieldError, err)
		b.Close()
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
