package backend

import (
	"context"
	"errors"
	"time"

	"lynx/internal/amqp"
	"lynx/internal/cache"
	"lynx/internal/report"
	"lynx/internal/services"
	"lynx/internal/sheets"
	"lynx/internal/storage"
)

// Backend holds the store and every service built on it. Jobs and Publisher
// are nil when AMQP or Google Sheets are not configured.
type Backend struct {
	Repo      *storage.SQLiteRepository
	Cache     *cache.LRUCache[report.Document]
	Rules     report.Rules
	Records   *services.RecordService
	Reports   *services.ReportService
	Exports   *services.ExportDir
	Jobs      *amqp.Client
	Publisher sheets.ReportPublisher
}

// Close releases every owned resource and reports all failures together.
func (b *Backend) Close() error {
	var errs []error
	if b.Jobs != nil {
		if err := b.Jobs.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.Repo != nil {
		if err := b.Repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP export jobs, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ExportDir       string
	ReportCacheSize int
	ReportCacheTTL  time.Duration
	ReportRulesFile string

	// Google Sheets publishing, optional
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
