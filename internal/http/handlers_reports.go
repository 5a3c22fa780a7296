package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lynx/internal/report"
	"lynx/internal/services"
)

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	mp, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	usage, err := s.reports.Usage(r.Context(), id, mp.Month, mp.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// handleBillingReview returns the review as JSON, or as a download when a
// file format is asked for.
func (s *Server) handleBillingReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	mp, err := ParseMonthParams(query, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if query.Get("format") == "json" {
		review, err := s.reports.BillingReview(r.Context(), id, mp.Month, mp.Year)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, review)
		return
	}

	format, err := ParseFormat(query, report.FormatPDF)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := services.ReportRequest{Kind: report.KindBillingReview, Month: mp.Month, Year: mp.Year, AuthorizationID: id}
	s.download(w, r, req, format)
}

func (s *Server) handleProgressReports(w http.ResponseWriter, r *http.Request) {
	mp, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := s.records.ProgressReportsForMonth(r.Context(), mp.Month, mp.Year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	format, err := ParseFormat(query, report.FormatCSV)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := ParseReportRequest(kind, query, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.download(w, r, req, format)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, req services.ReportRequest, format report.Format) {
	doc, err := s.reports.Build(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := s.reports.Render(doc, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Attachment(doc.Filename(format), format.ContentType(), data).Write(w)
}

type exportResponse struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

func (s *Server) handleRequestExport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	format, err := ParseFormat(query, report.FormatCSV)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := ParseReportRequest(kind, query, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	jobID, err := s.reports.RequestExport(r.Context(), req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	statusURL := "/exports/" + jobID.String()
	NewResponse().
		Status(http.StatusAccepted).
		Header("Location", statusURL).
		JSON(exportResponse{JobID: jobID.String(), StatusURL: statusURL}).
		Write(w)
}

// handleDownloadExport serves a finished export. A job that is still queued
// answers 404 so clients can poll.
func (s *Server) handleDownloadExport(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, badRequest("invalid job id %q", r.PathValue("id")))
		return
	}
	path, err := s.exports.Find(jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := filepath.Base(path)
	contentType := "application/octet-stream"
	if format, err := report.ParseFormat(strings.TrimPrefix(filepath.Ext(name), ".")); err == nil {
		contentType = format.ContentType()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(name))
	http.ServeContent(w, r, name, info.ModTime().In(time.UTC), f)
}
