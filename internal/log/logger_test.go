package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentReports, Output: &buf})

	logger.Info("hello", FieldReport, "billing")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentReports {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec[FieldReport] != "billing" {
		t.Fatalf("report = %v", rec[FieldReport])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Output: &buf})
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("component = %q", l.Component())
	}
	logger := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	if l := FromContext(NewContext(context.Background(), logger)); l != logger {
		t.Fatal("logger not returned from context")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	ctx := context.Background()

	sl.LogReportGenerated(ctx, "billing", "3 - 2024", 4, true, 12*time.Millisecond)
	if !strings.Contains(buf.String(), `"rows":4`) || !strings.Contains(buf.String(), `"cache_hit":true`) {
		t.Fatalf("report fields missing: %s", buf.String())
	}

	buf.Reset()
	sl.LogError(ctx, "failed", errors.New("boom"), OpExport, nil)
	if !strings.Contains(buf.String(), `"error":"boom"`) || !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("error fields missing: %s", buf.String())
	}

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/reports/billing", nil)
	sl.LogHTTPEnd(ctx, req, 503, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("5xx should log at error: %s", buf.String())
	}
}
