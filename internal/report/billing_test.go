package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"lynx/internal/core"
)

func units(v float64) *float64 { return &v }

func rate(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestAggregateBillingHours(t *testing.T) {
	rows := []BillingRow{
		{AuthorizationID: 7, AuthorizationType: core.Hours, BillingRate: rate(10), BilledUnits: units(4)},
		{AuthorizationID: 7, AuthorizationType: core.Hours, BillingRate: rate(10), BilledUnits: units(8)},
	}
	got := AggregateBilling(rows)
	if len(got) != 1 {
		t.Fatalf("expected one summary, got %d", len(got))
	}
	if !got[0].BilledTime.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("billed time = %s, want 3", got[0].BilledTime)
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("amount = %s, want 30", got[0].Amount)
	}
}

func TestAggregateBillingClasses(t *testing.T) {
	var rows []BillingRow
	for i := 0; i < 3; i++ {
		rows = append(rows, BillingRow{AuthorizationID: 2, AuthorizationType: core.Classes, BillingRate: rate(25), BilledUnits: units(1)})
	}
	rows = append(rows,
		BillingRow{AuthorizationID: 2, AuthorizationType: core.Classes, BillingRate: rate(25), BilledUnits: units(0)},
		BillingRow{AuthorizationID: 2, AuthorizationType: core.Classes, BillingRate: rate(25)},
	)
	got := AggregateBilling(rows)
	if !got[0].BilledTime.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("billed time = %s, want 3", got[0].BilledTime)
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("amount = %s, want 75", got[0].Amount)
	}
}

func TestAggregateBillingKeepsFirstSeenOrderAndNullRate(t *testing.T) {
	rows := []BillingRow{
		{AuthorizationID: 9, ClientName: "Zed", AuthorizationType: core.Hours, BilledUnits: units(4)},
		{AuthorizationID: 3, ClientName: "Amy", AuthorizationType: core.Hours, BillingRate: rate(20), BilledUnits: units(2)},
		{AuthorizationID: 9, ClientName: "Zed", AuthorizationType: core.Hours},
	}
	got := AggregateBilling(rows)
	if len(got) != 2 || got[0].AuthorizationID != 9 || got[1].AuthorizationID != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[0].Amount.IsZero() || !got[0].BilledTime.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("null rate should bill zero: %+v", got[0])
	}
	if !got[1].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("amount = %s, want 10", got[1].Amount)
	}
}

func TestBillingReportTotals(t *testing.T) {
	rows := []BillingRow{
		{AuthorizationID: 1, ClientName: "Ann Lee", AuthorizationNumber: "A1", AuthorizationType: core.Hours, BillingRate: rate(10), BilledUnits: units(6)},
		{AuthorizationID: 2, ClientName: "Bo Diaz", AuthorizationNumber: "B2", AuthorizationType: core.Classes, BillingRate: rate(25), BilledUnits: units(1)},
		{AuthorizationID: 3, ClientName: "Cy Fox", AuthorizationNumber: "C3", AuthorizationType: core.Hours, BillingRate: rate(10)},
	}
	doc := BillingReport(rows, 3, 2024)

	if doc.Filename(FormatCSV) != "Core Lynx Excel Billing - 3 - 2024.csv" {
		t.Fatalf("filename = %q", doc.Filename(FormatCSV))
	}
	if len(doc.Rows) != 4 {
		t.Fatalf("expected 3 rows and totals, got %d", len(doc.Rows))
	}
	if doc.Rows[0][4] != "1.5" || doc.Rows[0][6] != "15.00" {
		t.Fatalf("hours row = %v", doc.Rows[0])
	}
	// Rate and amount share two-decimal formatting.
	if doc.Rows[0][5] != "10.00" || doc.Rows[1][5] != "25.00" {
		t.Fatalf("rates = %q, %q", doc.Rows[0][5], doc.Rows[1][5])
	}
	if doc.Rows[2][4] != "0" {
		t.Fatalf("empty billed time should print 0, got %q", doc.Rows[2][4])
	}
	totals := doc.Rows[3]
	// 1.5 truncates to 1, plus one class.
	if totals[4] != "2" || totals[6] != "$40.00" {
		t.Fatalf("totals = %v", totals)
	}
	for i, row := range doc.Table() {
		if len(row) != len(doc.Header) {
			t.Fatalf("row %d has %d columns, want %d", i, len(row), len(doc.Header))
		}
	}
}
