package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"lynx/internal/amqp"
	"lynx/internal/cache"
	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/report"
	"lynx/internal/services"
	"lynx/internal/storage"
)

type fakeJobs struct {
	sent []*amqp.ExportJobMessage
}

func (f *fakeJobs) PublishExportJob(_ context.Context, msg *amqp.ExportJobMessage) error {
	f.sent = append(f.sent, msg)
	return nil
}

type testEnv struct {
	srv     *Server
	jobs    *fakeJobs
	exports *services.ExportDir
}

func newTestEnv(t *testing.T, withJobs bool, ratePerMinute int) testEnv {
	t.Helper()
	repo, err := storage.NewMemoryRepository()
	if err != nil {
		t.Fatalf("NewMemoryRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Output: io.Discard})
	jobs := &fakeJobs{}
	var publisher services.JobPublisher
	if withJobs {
		publisher = jobs
	}
	reports := services.NewReportService(repo, cache.NewLRUCache[report.Document](8, time.Minute), report.DefaultRules(), publisher, logger)
	exports := services.NewExportDir(t.TempDir())

	srv := NewServer(Options{
		Addr:               ":0",
		RateLimitPerMinute: ratePerMinute,
		Records:            services.NewRecordService(repo, reports, logger),
		Reports:            reports,
		Exports:            exports,
		Store:              repo,
	}, logger)
	srv.now = func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }
	return testEnv{srv: srv, jobs: jobs, exports: exports}
}

func (e testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.RemoteAddr = "203.0.113.5:4000"
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthReadyMetrics(t *testing.T) {
	env := newTestEnv(t, false, 0)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
	}
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("middleware headers missing: %v", rec.Header())
	}
}

func TestContactLifecycle(t *testing.T) {
	env := newTestEnv(t, false, 0)

	rec := env.do(t, http.MethodPost, "/api/contacts", `{"first_name":"Ann","last_name":"Lee","sip_client":true,"active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body)
	}
	created := decode[core.Contact](t, rec)
	if created.ID == 0 || rec.Header().Get("Location") == "" {
		t.Fatalf("created = %+v, location %q", created, rec.Header().Get("Location"))
	}
	base := rec.Header().Get("Location")

	rec = env.do(t, http.MethodPost, base+"/phones", `{"phone":"916-555-0100","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add phone status=%d body=%s", rec.Code, rec.Body)
	}
	rec = env.do(t, http.MethodPost, base+"/addresses", `{"address_one":"1 Main St","city":"Sacramento","state":"CA","zip_code":"95814","county":"Sacramento"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add address status=%d body=%s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status=%d", rec.Code)
	}
	details := decode[services.ContactDetails](t, rec)
	if len(details.Phones) != 1 || len(details.Addresses) != 1 || details.FirstName != "Ann" {
		t.Fatalf("details = %+v", details)
	}

	rec = env.do(t, http.MethodGet, "/api/contacts/search?q=95814", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search status=%d", rec.Code)
	}
	if rows := decode[[]report.ContactRow](t, rec); len(rows) != 1 || rows[0].FullName != "Ann Lee" {
		t.Fatalf("search rows = %+v", rows)
	}

	rec = env.do(t, http.MethodPut, base, `{"first_name":"Anne","last_name":"Lee","active":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body)
	}
	rec = env.do(t, http.MethodGet, "/api/contacts", "")
	if list := decode[[]core.Contact](t, rec); len(list) != 1 || list[0].FirstName != "Anne" {
		t.Fatalf("list = %+v", list)
	}

	if rec = env.do(t, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	if rec = env.do(t, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t, false, 0)
	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"validation", http.MethodPost, "/api/contacts", `{"notes":"no name"}`, http.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, "/api/contacts", `{"first_name":`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/api/contacts/abc", "", http.StatusBadRequest},
		{"missing contact", http.MethodGet, "/api/contacts/999", "", http.StatusNotFound},
		{"missing authorization", http.MethodGet, "/api/authorizations/999/usage", "", http.StatusNotFound},
		{"unknown report", http.MethodGet, "/reports/payroll", "", http.StatusUnprocessableEntity},
		{"bad format", http.MethodGet, "/reports/billing?format=docx", "", http.StatusUnprocessableEntity},
		{"quarter missing", http.MethodGet, "/reports/sip-quarterly-services?year=2023", "", http.StatusBadRequest},
		{"quarter out of range", http.MethodGet, "/reports/sip-quarterly-services?quarter=5&year=2023", "", http.StatusUnprocessableEntity},
		{"wrong method", http.MethodPatch, "/api/contacts", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.want, rec.Body)
			}
			if tt.want != http.StatusMethodNotAllowed {
				if body := decode[errorBody](t, rec); body.Error == "" {
					t.Fatal("empty error message")
				}
			}
		})
	}
}

func TestSipNotesAreStamped(t *testing.T) {
	env := newTestEnv(t, false, 0)
	a := decode[core.Contact](t, env.do(t, http.MethodPost, "/api/contacts", `{"first_name":"Ann","last_name":"Lee"}`))
	b := decode[core.Contact](t, env.do(t, http.MethodPost, "/api/contacts", `{"first_name":"Bo","last_name":"Diaz"}`))

	rec := env.do(t, http.MethodPost, "/api/contacts/"+itoa(a.ID)+"/sip-notes", `{"note_date":"2024-02-10","counseling":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create note status=%d body=%s", rec.Code, rec.Body)
	}
	note := decode[core.SipNote](t, rec)
	if note.Quarter != 2 || note.FiscalYear != "2023-24" {
		t.Fatalf("note stamped Q%d %s", note.Quarter, note.FiscalYear)
	}

	rec = env.do(t, http.MethodPut, "/api/sip-notes/"+itoa(note.ID), `{"contact_id":`+itoa(a.ID)+`,"note_date":"2024-10-02"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update note status=%d body=%s", rec.Code, rec.Body)
	}
	if note = decode[core.SipNote](t, rec); note.Quarter != 1 || note.FiscalYear != "2024-25" {
		t.Fatalf("restamped Q%d %s", note.Quarter, note.FiscalYear)
	}

	rec = env.do(t, http.MethodPost, "/api/sip-notes/bulk", `{"contact_ids":[`+itoa(a.ID)+`,`+itoa(b.ID)+`],"note":{"note_date":"2024-01-09","orientation":true}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("bulk status=%d body=%s", rec.Code, rec.Body)
	}
	if ids := decode[bulkResponse](t, rec).IDs; len(ids) != 2 {
		t.Fatalf("bulk ids = %v", ids)
	}
}

func TestBillingFlow(t *testing.T) {
	env := newTestEnv(t, false, 0)
	c := decode[core.Contact](t, env.do(t, http.MethodPost, "/api/contacts", `{"first_name":"Ann","last_name":"Lee"}`))

	rec := env.do(t, http.MethodPost, "/api/contacts/"+itoa(c.ID)+"/authorizations",
		`{"authorization_number":"A-1","authorization_type":"Hours","total_time":"10","billing_rate":"20"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create authorization status=%d body=%s", rec.Code, rec.Body)
	}
	auth := itoa(decode[createdResponse](t, rec).ID)

	for _, body := range []string{
		`{"date":"2024-03-05","attendance":"Present","billed_units":4}`,
		`{"date":"2024-03-12","attendance":"Present","billed_units":8}`,
	} {
		if rec := env.do(t, http.MethodPost, "/api/authorizations/"+auth+"/lesson-notes", body); rec.Code != http.StatusCreated {
			t.Fatalf("lesson note status=%d body=%s", rec.Code, rec.Body)
		}
	}
	if rec := env.do(t, http.MethodPost, "/api/authorizations/"+auth+"/progress-reports", `{"month":3,"year":2024,"instructor":"Kim"}`); rec.Code != http.StatusCreated {
		t.Fatalf("progress report status=%d body=%s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/api/authorizations/"+auth+"/usage?month=March&year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("usage status=%d body=%s", rec.Code, rec.Body)
	}
	if u := decode[report.Usage](t, rec); u.TotalUsed != "3" || u.TotalBilled != "$60.00" || u.Remaining != "7" {
		t.Fatalf("usage = %+v", u)
	}

	rec = env.do(t, http.MethodGet, "/api/progress-reports?month=March&year=2024", "")
	if reports := decode[[]core.ProgressReport](t, rec); len(reports) != 1 {
		t.Fatalf("progress reports = %+v", reports)
	}

	rec = env.do(t, http.MethodGet, "/reports/billing?month=3&year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("billing status=%d body=%s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Core Lynx Excel Billing - 3 - 2024.csv"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Ann Lee") || !strings.Contains(rec.Body.String(), "$60.00") {
		t.Fatalf("billing csv = %s", rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/api/authorizations/"+auth+"/billing-review?month=3&year=2024", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("review status=%d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("review is not a PDF")
	}

	rec = env.do(t, http.MethodGet, "/api/authorizations/"+auth+"/billing-review?month=3&year=2024&format=json", "")
	if review := decode[report.BillingReview](t, rec); len(review.Instructors) != 1 || review.Instructors[0] != "Kim" {
		t.Fatalf("review = %+v", review)
	}
}

func TestExports(t *testing.T) {
	env := newTestEnv(t, true, 0)

	rec := env.do(t, http.MethodPost, "/reports/billing/exports?month=3&year=2024&format=xlsx", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("export status=%d body=%s", rec.Code, rec.Body)
	}
	resp := decode[exportResponse](t, rec)
	if len(env.jobs.sent) != 1 || env.jobs.sent[0].JobID.String() != resp.JobID {
		t.Fatalf("published = %+v, response %+v", env.jobs.sent, resp)
	}
	if job := env.jobs.sent[0]; job.Kind != "billing" || job.Format != "xlsx" || job.Params.Month != 3 {
		t.Fatalf("job = %+v", job)
	}

	if rec := env.do(t, http.MethodGet, resp.StatusURL, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("pending export status=%d", rec.Code)
	}

	jobID := uuid.MustParse(resp.JobID)
	if _, err := env.exports.Write(jobID, "Core Lynx Excel Billing - 3 - 2024.xlsx", []byte("xlsx-bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec = env.do(t, http.MethodGet, resp.StatusURL, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "xlsx-bytes" {
		t.Fatalf("download status=%d body=%q", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != report.FormatXLSX.ContentType() {
		t.Fatalf("Content-Type = %q", got)
	}

	if rec := env.do(t, http.MethodGet, "/exports/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad job id status=%d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/reports/billing/exports?month=13&year=2024", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid export status=%d", rec.Code)
	}
}

func TestExportsDisabled(t *testing.T) {
	env := newTestEnv(t, false, 0)
	rec := env.do(t, http.MethodPost, "/reports/contacts/exports", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	env := newTestEnv(t, false, 2)
	for i := 0; i < 2; i++ {
		if rec := env.do(t, http.MethodPost, "/api/service-areas", `{"agency":"Area `+itoa(int64(i))+`"}`); rec.Code != http.StatusCreated {
			t.Fatalf("write %d status=%d body=%s", i, rec.Code, rec.Body)
		}
	}
	if rec := env.do(t, http.MethodPost, "/api/service-areas", `{"agency":"Area 3"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third write status=%d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/service-areas", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("read status=%d", rec.Code)
	}
	if areas := decode[[]core.ServiceArea](t, rec); len(areas) != 2 {
		t.Fatalf("areas = %+v", areas)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
