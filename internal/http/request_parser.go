// Package http serves the JSON records API and the report downloads.
//
// This file holds the helpers that turn path values, query strings and JSON
// bodies into typed values, reporting malformed input as errBadRequest.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lynx/internal/core"
	"lynx/internal/report"
	"lynx/internal/services"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errBadRequest marks input that could not be parsed at all, as opposed to
// input that parsed but failed validation.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// QuarterParams holds a fiscal quarter and the calendar year it starts in.
type QuarterParams struct {
	Year    int
	Quarter int
}

// ParseMonthParams reads month and year, defaulting each to now. Month may be
// a number or an English month name.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := parseMonth(v)
		if err != nil {
			return MonthParams{}, err
		}
		params.Month = m
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return MonthParams{}, badRequest("year %q is not a number", v)
		}
		params.Year = y
	}
	return params, nil
}

func parseMonth(v string) (int, error) {
	if m, err := strconv.Atoi(v); err == nil {
		return m, nil
	}
	if m, ok := core.MonthFromName(v); ok {
		return m, nil
	}
	return 0, badRequest("month %q is neither a number nor a month name", v)
}

// ParseQuarterParams reads quarter and year; both are required.
func ParseQuarterParams(query url.Values) (QuarterParams, error) {
	q, err := requiredInt(query, "quarter")
	if err != nil {
		return QuarterParams{}, err
	}
	y, err := requiredInt(query, "year")
	if err != nil {
		return QuarterParams{}, err
	}
	return QuarterParams{Year: y, Quarter: q}, nil
}

func requiredInt(query url.Values, key string) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, badRequest("missing %s", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s %q is not a number", key, v)
	}
	return n, nil
}

// ParseFormat reads the format parameter, falling back to def.
func ParseFormat(query url.Values, def report.Format) (report.Format, error) {
	v := strings.TrimSpace(query.Get("format"))
	if v == "" {
		return def, nil
	}
	return report.ParseFormat(v)
}

// ParseReportRequest builds the request for kind from the query string,
// reading only the parameters that kind uses.
func ParseReportRequest(kind report.Kind, query url.Values, now time.Time) (services.ReportRequest, error) {
	req := services.ReportRequest{Kind: kind}
	switch kind {
	case report.KindBilling, report.KindSipDemographics, report.KindBillingReview:
		mp, err := ParseMonthParams(query, now)
		if err != nil {
			return req, err
		}
		req.Month, req.Year = mp.Month, mp.Year
		if kind == report.KindBillingReview {
			id, err := requiredInt(query, "authorization_id")
			if err != nil {
				return req, err
			}
			req.AuthorizationID = int64(id)
		}
	case report.KindSipQuarterlyServices, report.KindSipQuarterlyDemographics:
		qp, err := ParseQuarterParams(query)
		if err != nil {
			return req, err
		}
		req.Quarter, req.Year = qp.Quarter, qp.Year
	case report.KindContacts:
		req.Query = sanitizeInput(query.Get("q"))
	}
	return req, nil
}

// pathID parses the named path wildcard as a positive record ID.
func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, v)
	}
	return id, nil
}

// decodeJSON reads one JSON object from the body into dst. Unknown fields
// and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest("body larger than %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return badRequest("empty body")
		case errors.Is(err, core.ErrInvalidDate):
			return err
		default:
			return badRequest("malformed JSON: %v", err)
		}
	}
	if dec.More() {
		return badRequest("body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
