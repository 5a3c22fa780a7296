// Package report turns flat store rows into downloadable report documents.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"lynx/internal/core"
)

// Format is the output encoding of a rendered document.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat resolves a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidFormat, s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Document is a fully aggregated report: a fixed header and its rows.
type Document struct {
	Name   string
	Period string
	Header []string
	Rows   [][]string
}

// Title is "<Name> - <Period>", or just the name for unscoped reports.
func (d Document) Title() string {
	if d.Period == "" {
		return d.Name
	}
	return d.Name + " - " + d.Period
}

// Filename returns the download name for the given format.
func (d Document) Filename(f Format) string {
	return d.Title() + "." + string(f)
}

// Table returns the header followed by every row, each padded or cut to the
// header width.
func (d Document) Table() [][]string {
	width := len(d.Header)
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Header)
	for _, row := range d.Rows {
		if len(row) == width {
			out = append(out, row)
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out
}

// Render encodes the document in the requested format.
func Render(d Document, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return RenderCSV(d)
	case FormatXLSX:
		return RenderXLSX(d)
	case FormatPDF:
		return RenderPDF(d)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFormat, f)
	}
}

// RenderCSV writes the header and rows as comma separated values.
func RenderCSV(d Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(d.Table()); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderXLSX writes the table to a single worksheet named after the report.
func RenderXLSX(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(d.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for i, row := range d.Table() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF prints the table on landscape A4 pages, repeating the header on
// every page.
func RenderPDF(d Document) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 10)

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colW := (pageW - left - right) / float64(max(len(d.Header), 1))
	const rowH = 6.0

	header := func() {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(d.Title()))
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 6)
		for _, h := range d.Header {
			pdf.CellFormat(colW, rowH, tr(fit(pdf, h, colW)), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 6)
	}

	header()
	table := d.Table()
	for _, row := range table[1:] {
		if pdf.GetY()+rowH > pageH-bottom {
			header()
		}
		for _, v := range row {
			pdf.CellFormat(colW, rowH, tr(fit(pdf, v, colW)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit trims s until it fits in a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s) <= w-pad {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..") > w-pad {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}

// SheetName makes a report name usable as an XLSX worksheet title, which
// excel caps at 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if strings.TrimSpace(name) == "" {
		return "Report"
	}
	return name
}
