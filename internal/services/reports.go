package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lynx/internal/amqp"
	"lynx/internal/cache"
	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/metrics"
	"lynx/internal/report"
	"lynx/internal/storage"
)

// ErrExportsDisabled is returned by RequestExport when no job queue is configured.
var ErrExportsDisabled = errors.New("export jobs are not configured")

// JobPublisher queues export jobs.
type JobPublisher interface {
	PublishExportJob(ctx context.Context, msg *amqp.ExportJobMessage) error
}

// ReportService turns stored records into report documents.
type ReportService struct {
	repo      *storage.SQLiteRepository
	cache     cache.Cache[report.Document]
	rules     report.Rules
	publisher JobPublisher
	logger    *log.Logger
	events    *log.StructuredLogger

	// generation counts invalidations. A document built before an
	// invalidation is not cached.
	mu         sync.Mutex
	generation uint64
	// beforeCache runs between building a document and caching it.
	beforeCache func()
}

// NewReportService wires the service. docCache and publisher may be nil.
func NewReportService(repo *storage.SQLiteRepository, docCache cache.Cache[report.Document], rules report.Rules, publisher JobPublisher, logger *log.Logger) *ReportService {
	logger = logger.WithComponent(log.ComponentReports)
	return &ReportService{
		repo:      repo,
		cache:     docCache,
		rules:     rules,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// Invalidate drops every cached report, including any being built right now.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *ReportService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// store caches doc unless an invalidation happened since gen was read.
func (s *ReportService) store(key string, doc report.Document, gen uint64) bool {
	if s.beforeCache != nil {
		s.beforeCache()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.cache.Set(key, doc)
	return true
}

// ExportsEnabled reports whether RequestExport can queue jobs.
func (s *ReportService) ExportsEnabled() bool {
	return s.publisher != nil
}

// Build returns the document for req, from cache when possible.
func (s *ReportService) Build(ctx context.Context, req ReportRequest) (report.Document, error) {
	if err := req.Validate(); err != nil {
		return report.Document{}, err
	}
	start := time.Now()
	key := req.cacheKey()

	if s.cache != nil {
		if doc, ok := s.cache.Get(key); ok {
			metrics.IncCacheLookup(true)
			s.events.LogReportGenerated(ctx, string(req.Kind), doc.Period, len(doc.Rows), true, time.Since(start))
			return doc, nil
		}
		metrics.IncCacheLookup(false)
	}

	gen := s.currentGeneration()
	doc, err := s.build(ctx, req)
	metrics.ObserveReportGenerate(string(req.Kind), err, time.Since(start))
	if err != nil {
		return report.Document{}, fmt.Errorf("build %s report: %w", req.Kind, err)
	}

	if s.cache != nil && !s.store(key, doc, gen) {
		s.logger.DebugContext(ctx, "Records changed during build, report not cached", log.FieldReport, string(req.Kind))
	}
	s.events.LogReportGenerated(ctx, string(req.Kind), doc.Period, len(doc.Rows), false, time.Since(start))
	return doc, nil
}

func (s *ReportService) build(ctx context.Context, req ReportRequest) (report.Document, error) {
	switch req.Kind {
	case report.KindBilling:
		rows, err := s.repo.BillingRows(ctx, req.Month, req.Year)
		if err != nil {
			return report.Document{}, err
		}
		return report.BillingReport(rows, req.Month, req.Year), nil

	case report.KindSipDemographics:
		period := core.FiscalPeriodOf(req.Year, req.Month)
		rows, err := s.repo.SipMonthlyDemographicRows(ctx, req.Month, req.Year, period.FiscalYear, core.MonthsBefore(req.Month))
		if err != nil {
			return report.Document{}, err
		}
		return report.SipMonthlyDemographicReport(rows, req.Month, req.Year, s.rules), nil

	case report.KindSipQuarterlyServices:
		rows, err := s.repo.SipOutcomeRows(ctx, core.FiscalYear(req.Year), req.Quarter)
		if err != nil {
			return report.Document{}, err
		}
		s.logUnknownQuarters(ctx, rows)
		return report.SipServicesReport(rows, req.Quarter, req.Year), nil

	case report.KindSipQuarterlyDemographics:
		fy := core.FiscalYear(req.Year)
		rows, err := s.repo.SipQuarterDemographicRows(ctx, fy, req.Quarter)
		if err != nil {
			return report.Document{}, err
		}
		first, err := s.repo.FirstSipNoteDates(ctx, fy, req.Quarter)
		if err != nil {
			return report.Document{}, err
		}
		return report.SipQuarterlyDemographicReport(rows, first, req.Quarter, req.Year, s.rules), nil

	case report.KindContacts:
		rows, err := s.repo.SearchContacts(ctx, strings.TrimSpace(req.Query))
		if err != nil {
			return report.Document{}, err
		}
		return report.SearchResultsReport(rows), nil

	case report.KindBillingReview:
		review, err := s.BillingReview(ctx, req.AuthorizationID, req.Month, req.Year)
		if err != nil {
			return report.Document{}, err
		}
		return review.Document(), nil
	}
	return report.Document{}, fmt.Errorf("%w: %q", core.ErrInvalidReport, req.Kind)
}

func (s *ReportService) logUnknownQuarters(ctx context.Context, rows []report.OutcomeRow) {
	if n := report.UnknownQuarters(rows); n > 0 {
		s.logger.DebugContext(ctx, "SIP notes without a fiscal quarter left out of services report", "dropped", n)
	}
}

// Render encodes doc in format.
func (s *ReportService) Render(doc report.Document, format report.Format) ([]byte, error) {
	start := time.Now()
	data, err := report.Render(doc, format)
	metrics.ObserveReportRender(string(format), err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// Usage summarizes an authorization's consumption, with the month figure
// restricted to month/year.
func (s *ReportService) Usage(ctx context.Context, authorizationID int64, month, year int) (report.Usage, error) {
	if err := validMonth(month, year); err != nil {
		return report.Usage{}, err
	}
	auth, err := s.repo.GetAuthorization(ctx, authorizationID)
	if err != nil {
		return report.Usage{}, err
	}
	notes, err := s.repo.ListLessonNotes(ctx, authorizationID)
	if err != nil {
		return report.Usage{}, fmt.Errorf("list lesson notes: %w", err)
	}
	return report.SummarizeUsage(auth, notes, month, year), nil
}

// BillingReview collects what the monthly review sheet prints for one
// authorization.
func (s *ReportService) BillingReview(ctx context.Context, authorizationID int64, month, year int) (report.BillingReview, error) {
	auth, err := s.repo.GetAuthorization(ctx, authorizationID)
	if err != nil {
		return report.BillingReview{}, err
	}
	contact, err := s.repo.GetContact(ctx, auth.ContactID)
	if err != nil {
		return report.BillingReview{}, fmt.Errorf("authorization contact: %w", err)
	}
	review := report.BillingReview{
		Authorization: auth,
		ClientName:    contact.FullName(),
		Month:         month,
		Year:          year,
	}

	if auth.OutsideAgencyID != nil {
		agency, err := s.repo.GetOutsideAgency(ctx, *auth.OutsideAgencyID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return report.BillingReview{}, fmt.Errorf("outside agency: %w", err)
		}
		if err == nil {
			review.PaymentSource = agency.PaymentSource()
		}
	}

	addresses, err := s.repo.ListAddresses(ctx, contact.ID)
	if err != nil {
		return report.BillingReview{}, fmt.Errorf("list addresses: %w", err)
	}
	if len(addresses) > 0 {
		review.Address = formatAddress(addresses[0])
	}
	phones, err := s.repo.ListPhones(ctx, contact.ID)
	if err != nil {
		return report.BillingReview{}, fmt.Errorf("list phones: %w", err)
	}
	if len(phones) > 0 {
		review.Phone = phones[0].Phone
	}

	progress, err := s.repo.ListProgressReports(ctx, authorizationID)
	if err != nil {
		return report.BillingReview{}, fmt.Errorf("list progress reports: %w", err)
	}
	review.Instructors = instructors(progress)

	if review.Notes, err = s.repo.ListLessonNotes(ctx, authorizationID); err != nil {
		return report.BillingReview{}, fmt.Errorf("list lesson notes: %w", err)
	}
	return review, nil
}

func formatAddress(a core.Address) string {
	line := strings.TrimSpace(a.AddressOne + " " + a.AddressTwo)
	if a.Suite != "" {
		line += " " + a.Suite
	}
	cityState := strings.TrimSpace(strings.Trim(a.City+", "+a.State, ", "))
	return strings.TrimSpace(strings.Join(nonEmpty(line, cityState, a.ZipCode), ", "))
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// instructors returns the distinct instructor names in first-seen order.
func instructors(reports []core.ProgressReport) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range reports {
		name := strings.TrimSpace(p.Instructor)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// RequestExport validates req and queues it for the export worker.
func (s *ReportService) RequestExport(ctx context.Context, req ReportRequest, format report.Format) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}
	if s.publisher == nil {
		return uuid.Nil, ErrExportsDisabled
	}
	msg := amqp.NewExportJobMessage(string(req.Kind), req.Params(), string(format))
	err := s.publisher.PublishExportJob(ctx, msg)
	metrics.IncExportJob(metrics.StagePublished, err)
	if err != nil {
		return uuid.Nil, fmt.Errorf("queue export: %w", err)
	}
	s.logger.InfoContext(ctx, "Export queued",
		log.FieldJobID, msg.JobID.String(), log.FieldReport, string(req.Kind), log.FieldFormat, string(format))
	return msg.JobID, nil
}
