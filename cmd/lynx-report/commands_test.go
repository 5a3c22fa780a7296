package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"March", 3, false},
		{" october ", 10, false},
		{"smarch", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMonth(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseMonth(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	if got := outputPath("", "r.csv"); got != "r.csv" {
		t.Fatalf("empty out = %q", got)
	}
	if got := outputPath(dir, "r.csv"); got != filepath.Join(dir, "r.csv") {
		t.Fatalf("dir out = %q", got)
	}
	file := filepath.Join(dir, "named.csv")
	if got := outputPath(file, "r.csv"); got != file {
		t.Fatalf("file out = %q", got)
	}
}

func testApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "lynx-report",
		Writer:    stdout,
		ErrWriter: io.Discard,
		Flags:     []cli.Flag{&cli.StringFlag{Name: "env-file", Value: "missing.env"}},
		Commands: []*cli.Command{
			reportCommand(contactsReport),
			reportCommand(billingReport),
			reportCommand(sipServicesReport),
			migrateCommand(),
		},
	}
}

func memoryEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "lynx.db"))
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	return dir
}

func TestReportToStdout(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer
	if err := testApp(&out).Run([]string{"lynx-report", "contacts", "--out", "-"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), ",") {
		t.Fatalf("stdout = %q, want a CSV header", out.String())
	}
}

func TestReportToDirectory(t *testing.T) {
	dir := memoryEnv(t)
	args := []string{"lynx-report", "billing", "--month", "march", "--year", "2024", "--format", "xlsx", "--out", dir}
	if err := testApp(io.Discard).Run(args); err != nil {
		t.Fatalf("Run: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if len(matches) != 1 {
		t.Fatalf("xlsx files = %v", matches)
	}
}

func TestReportErrors(t *testing.T) {
	memoryEnv(t)
	tests := [][]string{
		{"lynx-report", "billing", "--month", "13"},
		{"lynx-report", "billing", "--format", "docx"},
		{"lynx-report", "sip-services", "--year", "2023"},
		{"lynx-report", "contacts", "--enqueue"},
	}
	for _, args := range tests {
		if err := testApp(io.Discard).Run(args); err == nil {
			t.Fatalf("Run(%v) succeeded", args)
		}
	}
}

func TestMigrate(t *testing.T) {
	dir := memoryEnv(t)
	if err := testApp(io.Discard).Run([]string{"lynx-report", "migrate"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lynx.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
}
