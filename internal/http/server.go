package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/middleware/ratelimit"
	"lynx/internal/middleware/security"
	"lynx/internal/middleware/trace"
	"lynx/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries everything the server routes to.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	Records            *services.RecordService
	Reports            *services.ReportService
	Exports            *services.ExportDir
	Store              Pinger
}

type Server struct {
	http.Server
	records *services.RecordService
	reports *services.ReportService
	exports *services.ExportDir
	store   Pinger
	limiter *ratelimit.Limiter
	logger  *log.Logger
	now     func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, logger *log.Logger) *Server {
	logger = logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// PDF and XLSX rendering of a full year can take a while.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
		records: opts.Records,
		reports: opts.Reports,
		exports: opts.Exports,
		store:   opts.Store,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		logger:  logger,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	detector := security.NewDetector(logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP, logger)
	limit := s.limiter.Middleware(detector.ExtractClientIP, logger)

	s.Handler = tracer.Middleware(headers.Middleware(detector.Middleware(limit(mux))))
	return s
}

// Limiter exposes the rate limiter so its stale clients can be swept.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Contacts and the records hanging off them
	mux.HandleFunc("GET /api/contacts", s.handleListContacts)
	mux.HandleFunc("POST /api/contacts", s.handleCreateContact)
	mux.HandleFunc("GET /api/contacts/search", s.handleSearchContacts)
	mux.HandleFunc("GET /api/contacts/{id}", s.handleGetContact)
	mux.HandleFunc("PUT /api/contacts/{id}", s.handleUpdateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", deleteFor(s.records.DeleteContact))

	mux.HandleFunc("POST /api/contacts/{id}/addresses", createFor(func(a *core.Address, id int64) { a.ContactID = id }, s.records.AddAddress))
	mux.HandleFunc("POST /api/contacts/{id}/phones", createFor(func(p *core.Phone, id int64) { p.ContactID = id }, s.records.AddPhone))
	mux.HandleFunc("POST /api/contacts/{id}/emails", createFor(func(e *core.Email, id int64) { e.ContactID = id }, s.records.AddEmail))
	mux.HandleFunc("POST /api/contacts/{id}/emergency-contacts", createFor(func(e *core.EmergencyContact, id int64) { e.ContactID = id }, s.records.AddEmergencyContact))
	mux.HandleFunc("POST /api/contacts/{id}/intake-notes", createFor(func(n *core.IntakeNote, id int64) { n.ContactID = id }, s.records.AddIntakeNote))
	mux.HandleFunc("GET /api/contacts/{id}/intake", s.handleGetIntake)
	mux.HandleFunc("PUT /api/contacts/{id}/intake", s.handleSaveIntake)

	// SIP
	mux.HandleFunc("POST /api/contacts/{id}/sip-plans", createFor(func(p *core.SipPlan, id int64) { p.ContactID = id }, s.records.CreateSipPlan))
	mux.HandleFunc("GET /api/sip-plans/{id}", getFor(s.records.GetSipPlan))
	mux.HandleFunc("PUT /api/sip-plans/{id}", updateFor(func(p *core.SipPlan, id int64) { p.ID = id }, s.records.UpdateSipPlan))
	mux.HandleFunc("DELETE /api/sip-plans/{id}", deleteFor(s.records.DeleteSipPlan))
	mux.HandleFunc("POST /api/contacts/{id}/sip-notes", s.handleCreateSipNote)
	mux.HandleFunc("POST /api/sip-notes/bulk", s.handleBulkSipNotes)
	mux.HandleFunc("PUT /api/sip-notes/{id}", s.handleUpdateSipNote)
	mux.HandleFunc("DELETE /api/sip-notes/{id}", deleteFor(s.records.DeleteSipNote))

	// Authorizations
	mux.HandleFunc("POST /api/contacts/{id}/authorizations", createFor(func(a *core.Authorization, id int64) { a.ContactID = id }, s.records.CreateAuthorization))
	mux.HandleFunc("GET /api/authorizations/{id}", getFor(s.records.GetAuthorization))
	mux.HandleFunc("PUT /api/authorizations/{id}", updateFor(func(a *core.Authorization, id int64) { a.ID = id }, s.records.UpdateAuthorization))
	mux.HandleFunc("DELETE /api/authorizations/{id}", deleteFor(s.records.DeleteAuthorization))
	mux.HandleFunc("GET /api/authorizations/{id}/usage", s.handleUsage)
	mux.HandleFunc("GET /api/authorizations/{id}/billing-review", s.handleBillingReview)
	mux.HandleFunc("POST /api/authorizations/{id}/lesson-notes", createFor(func(n *core.LessonNote, id int64) { n.AuthorizationID = id }, s.records.CreateLessonNote))
	mux.HandleFunc("POST /api/authorizations/{id}/progress-reports", createFor(func(p *core.ProgressReport, id int64) { p.AuthorizationID = id }, s.records.CreateProgressReport))
	mux.HandleFunc("PUT /api/lesson-notes/{id}", updateFor(func(n *core.LessonNote, id int64) { n.ID = id }, s.records.UpdateLessonNote))
	mux.HandleFunc("DELETE /api/lesson-notes/{id}", deleteFor(s.records.DeleteLessonNote))
	mux.HandleFunc("GET /api/progress-reports", s.handleProgressReports)
	mux.HandleFunc("PUT /api/progress-reports/{id}", updateFor(func(p *core.ProgressReport, id int64) { p.ID = id }, s.records.UpdateProgressReport))
	mux.HandleFunc("DELETE /api/progress-reports/{id}", deleteFor(s.records.DeleteProgressReport))

	// Agencies and volunteers
	mux.HandleFunc("GET /api/service-areas", listFor(s.records.ListServiceAreas))
	mux.HandleFunc("POST /api/service-areas", createFor(nil, s.records.CreateServiceArea))
	mux.HandleFunc("GET /api/outside-agencies", listFor(s.records.ListOutsideAgencies))
	mux.HandleFunc("POST /api/outside-agencies", createFor(nil, s.records.CreateOutsideAgency))
	mux.HandleFunc("POST /api/volunteers", createFor(nil, s.records.AddVolunteer))

	// Reports
	mux.HandleFunc("GET /reports/{kind}", s.handleReport)
	mux.HandleFunc("POST /reports/{kind}/exports", s.handleRequestExport)
	mux.HandleFunc("GET /exports/{id}", s.handleDownloadExport)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
