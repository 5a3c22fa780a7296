package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lynx/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json"})
	mw := NewMiddleware(nil, logger)

	var seen string
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "generated", header: ""},
		{name: "propagated", header: "abc-123", want: "abc-123"},
		{name: "rejects spaces", header: "has space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != seen {
				t.Fatalf("response id %q != context id %q", got, seen)
			}
			if tt.want != "" && got != tt.want {
				t.Fatalf("request id = %q, want %q", got, tt.want)
			}
			if tt.want == "" && !strings.HasPrefix(got, "req_") {
				t.Fatalf("generated id = %q", got)
			}
			if !strings.Contains(buf.String(), `"request_id":"`+got+`"`) {
				t.Fatalf("handler log missing request id: %s", buf.String())
			}
			if !strings.Contains(buf.String(), `"status_code":418`) {
				t.Fatalf("completion log missing status: %s", buf.String())
			}
		})
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", rw.statusCode)
	}
}
