package backend

import (
	"context"
	"fmt"

	"lynx/internal/amqp"
	"lynx/internal/cache"
	"lynx/internal/config"
	"lynx/internal/log"
	"lynx/internal/report"
	"lynx/internal/services"
	gsheet "lynx/internal/sheets/google"
	"lynx/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the store and wires the services on top of it. AMQP
// and Google Sheets failures are logged and the backend continues without
// them; store and rules failures are fatal.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}

	rules, err := config.LoadReportRules(cfg.ReportRulesFile)
	if err != nil {
		repo.Close()
		return nil, err
	}

	b := &Backend{
		Repo:    repo,
		Cache:   cache.NewLRUCache[report.Document](cfg.ReportCacheSize, cfg.ReportCacheTTL),
		Rules:   rules,
		Exports: services.NewExportDir(cfg.ExportDir),
	}

	if cfg.AMQPURL != "" {
		b.Jobs, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without export jobs", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	if cfg.GoogleSpreadsheetID != "" {
		publisher, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize Google Sheets publisher, continuing without it", log.FieldError, err)
		} else {
			b.Publisher = publisher
		}
	}

	// A nil *amqp.Client must not become a non-nil interface.
	var jobs services.JobPublisher
	if b.Jobs != nil {
		jobs = b.Jobs
	}
	b.Reports = services.NewReportService(repo, b.Cache, rules, jobs, f.logger)
	b.Records = services.NewRecordService(repo, b.Reports, f.logger)

	f.logger.Info("Initialized backend",
		"type", cfg.Type.String(),
		"export_jobs", b.Jobs != nil,
		"sheets", b.Publisher != nil,
		"excluded_clients", len(rules.ExcludedClientIDs))
	return b, nil
}

func (f *DefaultFactory) openStore(cfg Config) (*storage.SQLiteRepository, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		repo, err := storage.NewMemoryRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory repository: %w", err)
		}
		f.logger.Warn("Using in-memory store, records are lost on exit")
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
