package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"lynx/internal/core"
)

func sampleDocument() Document {
	return Document{
		Name:   "Sample",
		Period: "Q1 - 2023-24",
		Header: []string{"Name", "City", "Note"},
		Rows: [][]string{
			{"Ann, Lee", "Fresno", `said "hi"`},
			{"", "", ""},
			{"short"},
		},
	}
}

func TestRenderCSVQuotesAndPads(t *testing.T) {
	out, err := RenderCSV(sampleDocument())
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d", len(records))
	}
	if records[1][0] != "Ann, Lee" || records[1][2] != `said "hi"` {
		t.Fatalf("quoting lost: %v", records[1])
	}
	if len(records[3]) != 3 {
		t.Fatalf("short row not padded: %v", records[3])
	}
}

func TestRenderXLSX(t *testing.T) {
	out, err := Render(sampleDocument(), FormatXLSX)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Sample", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "Ann, Lee" {
		t.Fatalf("A2 = %q", v)
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(sampleDocument(), FormatPDF)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"", FormatCSV},
		{"CSV", FormatCSV},
		{" xlsx", FormatXLSX},
		{"pdf", FormatPDF},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, core.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestSheetName(t *testing.T) {
	if got := SheetName("SIP Quarterly Demographic Report/Q1"); got != "SIP Quarterly Demographic Repor" {
		t.Fatalf("SheetName = %q", got)
	}
	if got := SheetName(""); got != "Report" {
		t.Fatalf("SheetName(empty) = %q", got)
	}
}
