package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lynx/internal/amqp"
	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/metrics"
	"lynx/internal/report"
	"lynx/internal/services"
	"lynx/internal/sheets"
)

// ReportBuilder builds and encodes report documents.
type ReportBuilder interface {
	Build(ctx context.Context, req services.ReportRequest) (report.Document, error)
	Render(doc report.Document, format report.Format) ([]byte, error)
}

// ExportStore persists rendered export files.
type ExportStore interface {
	Write(jobID uuid.UUID, filename string, data []byte) (string, error)
}

// ExportWorker renders queued report exports to disk and, when a publisher
// is configured, mirrors the document to a spreadsheet tab.
type ExportWorker struct {
	reports   ReportBuilder
	exports   ExportStore
	publisher sheets.ReportPublisher
	logger    *log.Logger
}

// NewExportWorker wires the worker. publisher may be nil.
func NewExportWorker(reports ReportBuilder, exports ExportStore, publisher sheets.ReportPublisher, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		reports:   reports,
		exports:   exports,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExportJob processes one export job. Jobs that can never succeed are
// logged and acknowledged by returning nil; anything else returns an error
// so the job is retried.
func (w *ExportWorker) HandleExportJob(ctx context.Context, msg *amqp.ExportJobMessage) error {
	start := time.Now()
	logger := w.logger.With(log.FieldJobID, msg.JobID.String(), log.FieldReport, msg.Kind, log.FieldFormat, msg.Format)
	logger.InfoContext(ctx, "Processing export job")

	path, err := w.export(ctx, msg)
	metrics.IncExportJob(metrics.StageConsumed, err)
	metrics.ObserveExportJob(err, time.Since(start))

	if err != nil {
		if permanent(err) {
			logger.ErrorContext(ctx, "Dropping export job", "error", err)
			return nil
		}
		return err
	}

	logger.InfoContext(ctx, "Export job completed", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *ExportWorker) export(ctx context.Context, msg *amqp.ExportJobMessage) (string, error) {
	req, err := services.RequestFromJob(msg)
	if err != nil {
		return "", err
	}
	format, err := report.ParseFormat(msg.Format)
	if err != nil {
		return "", err
	}

	doc, err := w.reports.Build(ctx, req)
	if err != nil {
		return "", err
	}
	data, err := w.reports.Render(doc, format)
	if err != nil {
		return "", err
	}
	path, err := w.exports.Write(msg.JobID, doc.Filename(format), data)
	if err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	if w.publisher != nil {
		// The file is already written; a failed mirror must not requeue the job.
		tab, err := w.publisher.Publish(ctx, doc)
		if err != nil {
			w.logger.WarnContext(ctx, "Failed to publish report to sheet", log.FieldJobID, msg.JobID.String(), "error", err)
		} else {
			w.logger.InfoContext(ctx, "Report published to sheet", log.FieldJobID, msg.JobID.String(), "tab", tab)
		}
	}
	return path, nil
}

func permanent(err error) bool {
	return core.IsInvalid(err) || errors.Is(err, core.ErrNotFound)
}
