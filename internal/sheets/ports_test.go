package sheets

import (
	"strings"
	"testing"
	"unicode/utf8"

	"lynx/internal/report"
)

func TestTabName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Lynx Search Results", "Lynx Search Results"},
		{"SIP Report [Q1]: a/b", "SIP Report -Q1-- a-b"},
		{"   ", "Report"},
		{"", "Report"},
	}
	for _, tt := range tests {
		if got := TabName(tt.in); got != tt.want {
			t.Errorf("TabName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("é", 150)
	if got := TabName(long); utf8.RuneCountInString(got) != 100 {
		t.Fatalf("TabName kept %d runes, want 100", utf8.RuneCountInString(got))
	}
}

func TestTabNameKeepsPeriod(t *testing.T) {
	pairs := [][2]report.Document{
		{report.SipServicesReport(nil, 1, 2023), report.SipServicesReport(nil, 2, 2024)},
		{report.BillingReport(nil, 3, 2024), report.BillingReport(nil, 3, 2025)},
		{report.SipMonthlyDemographicReport(nil, 1, 2024, report.DefaultRules()), report.SipMonthlyDemographicReport(nil, 2, 2024, report.DefaultRules())},
	}
	for _, p := range pairs {
		a, b := TabName(p[0].Title()), TabName(p[1].Title())
		if a == b {
			t.Fatalf("%q and %q publish to the same tab %q", p[0].Title(), p[1].Title(), a)
		}
		if a != p[0].Title() {
			t.Fatalf("TabName(%q) = %q, want the title unchanged", p[0].Title(), a)
		}
	}
}
