package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"lynx/internal/amqp"
	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/report"
	"lynx/internal/services"
	"lynx/internal/sheets"
	"lynx/internal/sheets/memory"
)

type fakeBuilder struct {
	doc      report.Document
	buildErr error
	requests []services.ReportRequest
}

func (f *fakeBuilder) Build(_ context.Context, req services.ReportRequest) (report.Document, error) {
	f.requests = append(f.requests, req)
	if f.buildErr != nil {
		return report.Document{}, f.buildErr
	}
	return f.doc, nil
}

func (f *fakeBuilder) Render(doc report.Document, format report.Format) ([]byte, error) {
	return report.Render(doc, format)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, report.Document) (string, error) {
	return "", errors.New("sheets unavailable")
}

func testLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func billingDoc() report.Document {
	return report.Document{
		Name:   "Core Lynx Excel Billing",
		Period: "3 - 2024",
		Header: []string{"Client", "Hours"},
		Rows:   [][]string{{"Ada Lovelace", "2"}},
	}
}

func TestHandleExportJob_WritesFileAndPublishes(t *testing.T) {
	dir := services.NewExportDir(t.TempDir())
	builder := &fakeBuilder{doc: billingDoc()}
	pub := memory.New()
	w := NewExportWorker(builder, dir, pub, testLogger())

	msg := amqp.NewExportJobMessage(string(report.KindBilling), amqp.ExportParams{Month: 3, Year: 2024}, "csv")
	if err := w.HandleExportJob(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportJob: %v", err)
	}

	if len(builder.requests) != 1 {
		t.Fatalf("builds = %d, want 1", len(builder.requests))
	}
	if got := builder.requests[0]; got.Month != 3 || got.Year != 2024 || got.Kind != report.KindBilling {
		t.Fatalf("request = %+v", got)
	}

	path, err := dir.Find(msg.JobID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	want, _ := report.RenderCSV(billingDoc())
	if string(data) != string(want) {
		t.Fatalf("export = %q, want %q", data, want)
	}

	if pub.Tabs() != 1 {
		t.Fatalf("published tabs = %d, want 1", pub.Tabs())
	}
	if _, ok := pub.Tab(sheets.TabName(billingDoc().Title())); !ok {
		t.Fatal("report tab not published")
	}
}

func TestHandleExportJob_PublishFailureStillSucceeds(t *testing.T) {
	dir := services.NewExportDir(t.TempDir())
	w := NewExportWorker(&fakeBuilder{doc: billingDoc()}, dir, failingPublisher{}, testLogger())

	msg := amqp.NewExportJobMessage(string(report.KindBilling), amqp.ExportParams{Month: 3, Year: 2024}, "xlsx")
	if err := w.HandleExportJob(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportJob: %v", err)
	}
	if _, err := dir.Find(msg.JobID); err != nil {
		t.Fatalf("export missing: %v", err)
	}
}

func TestHandleExportJob_Errors(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		params   amqp.ExportParams
		format   string
		buildErr error
		wantErr  bool
	}{
		{name: "unknown kind is dropped", kind: "payroll", params: amqp.ExportParams{Month: 1, Year: 2024}, format: "csv"},
		{name: "bad month is dropped", kind: "billing", params: amqp.ExportParams{Month: 13, Year: 2024}, format: "csv"},
		{name: "bad format is dropped", kind: "billing", params: amqp.ExportParams{Month: 1, Year: 2024}, format: "docx"},
		{name: "missing record is dropped", kind: "billing", params: amqp.ExportParams{Month: 1, Year: 2024}, format: "csv", buildErr: core.ErrNotFound},
		{name: "storage failure is retried", kind: "billing", params: amqp.ExportParams{Month: 1, Year: 2024}, format: "csv", buildErr: errors.New("database is locked"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := services.NewExportDir(t.TempDir())
			w := NewExportWorker(&fakeBuilder{doc: billingDoc(), buildErr: tt.buildErr}, dir, nil, testLogger())

			msg := amqp.NewExportJobMessage(tt.kind, tt.params, tt.format)
			err := w.HandleExportJob(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := dir.Find(msg.JobID); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("Find err = %v, want ErrNotFound", err)
			}
		})
	}
}
