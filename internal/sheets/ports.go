package sheets

import (
	"context"
	"strings"

	"lynx/internal/report"
)

// maxTabName is the Google Sheets limit on tab titles.
const maxTabName = 100

// ReportPublisher copies a finished report into a spreadsheet tab named
// after the document, replacing whatever the tab held before.
type ReportPublisher interface {
	// Publish returns a reference to the written range.
	Publish(ctx context.Context, doc report.Document) (ref string, err error)
}

// TabName turns a document title into a tab title. Titles keep their period
// so every report period gets its own tab.
func TabName(title string) string {
	title = strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', ':', '/', '\\':
			return '-'
		}
		return r
	}, title))
	if r := []rune(title); len(r) > maxTabName {
		title = strings.TrimSpace(string(r[:maxTabName]))
	}
	if title == "" {
		return "Report"
	}
	return title
}
