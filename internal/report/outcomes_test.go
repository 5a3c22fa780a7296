package report

import (
	"testing"

	"lynx/internal/core"
)

func TestOutcomeBooleanIsMonotonic(t *testing.T) {
	rows := []OutcomeRow{
		{ContactID: 1, Quarter: 2},
		{ContactID: 1, Quarter: 2, SipServices: core.SipServices{Counseling: true, AtServices: true}},
		{ContactID: 1, Quarter: 2},
	}
	got := AggregateOutcomes(rows)
	q := got[0].Quarters[2]
	if q == nil {
		t.Fatalf("expected Q2 outcome")
	}
	if !q.Counseling {
		t.Fatalf("counseling should stay Yes once reported")
	}
	if !q.AtDevicesServices {
		t.Fatalf("AT services should set the combined flag")
	}
	if q.Dls {
		t.Fatalf("dls was never reported")
	}
}

func TestOutcomeRankedFieldsKeepBest(t *testing.T) {
	rows := []OutcomeRow{
		{ContactID: 1, Quarter: 1, LivingPlanProgress: PlanLessConfident, AtOutcomes: AssessedDecreased},
		{ContactID: 1, Quarter: 1, LivingPlanProgress: PlanMoreConfident, AtOutcomes: AssessedImproved},
		{ContactID: 1, Quarter: 1, LivingPlanProgress: PlanLessConfident, AtOutcomes: AssessedDecreased},
		{ContactID: 1, Quarter: 1, LivingPlanProgress: "Plan not complete", AtOutcomes: "Not assessed"},
	}
	q := AggregateOutcomes(rows)[0].Quarters[1]
	if q.LivingPlanProgress != "Increased" {
		t.Fatalf("living plan progress = %q, want Increased", q.LivingPlanProgress)
	}
	if q.AtOutcomes != AssessedImproved {
		t.Fatalf("at outcomes = %q", q.AtOutcomes)
	}
}

func TestOutcomeFirstNoteSetsInitialValues(t *testing.T) {
	rows := []OutcomeRow{
		{ContactID: 4, Quarter: 3, CommunityPlanProgress: "", IlaOutcomes: "Not yet"},
		{ContactID: 4, Quarter: 3, CommunityPlanProgress: PlanNoDifference},
	}
	q := AggregateOutcomes(rows)[0].Quarters[3]
	if q.CommunityPlanProgress != "Maintained" {
		t.Fatalf("community = %q, want Maintained", q.CommunityPlanProgress)
	}
	if q.IlaOutcomes != "Not yet" {
		t.Fatalf("unrecognized first value should pass through, got %q", q.IlaOutcomes)
	}

	first := AggregateOutcomes(rows[:1])[0].Quarters[3]
	if first.CommunityPlanProgress != "Not Assessed" {
		t.Fatalf("empty plan progress = %q, want Not Assessed", first.CommunityPlanProgress)
	}
}

func TestSipServicesReportQuarterOrder(t *testing.T) {
	rows := []OutcomeRow{
		{ContactID: 2, ClientName: "Bo", Quarter: 3, SipServices: core.SipServices{Support: true}},
		{ContactID: 2, ClientName: "Bo", Quarter: 1},
		{ContactID: 1, ClientName: "Al", Quarter: 2},
		{ContactID: 1, ClientName: "Al", Quarter: 0},
	}
	doc := SipServicesReport(rows, 1, 2023)
	if doc.Filename(FormatCSV) != "SIP Quarterly Services Report - Q1 - 2023-24.csv" {
		t.Fatalf("filename = %q", doc.Filename(FormatCSV))
	}
	if len(doc.Header) != 26 {
		t.Fatalf("header has %d columns", len(doc.Header))
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(doc.Rows))
	}
	if doc.Rows[0][0] != "Bo" || doc.Rows[0][22] != "No" {
		t.Fatalf("first row should be Bo Q1: %v", doc.Rows[0])
	}
	if doc.Rows[1][0] != "Bo" || doc.Rows[1][22] != "Yes" {
		t.Fatalf("second row should be Bo Q3: %v", doc.Rows[1])
	}
	if doc.Rows[2][0] != "Al" {
		t.Fatalf("third row should be Al: %v", doc.Rows[2])
	}
	for _, row := range doc.Rows {
		if len(row) != len(doc.Header) {
			t.Fatalf("row width %d != header width %d", len(row), len(doc.Header))
		}
	}
}

func TestUnknownQuartersAreDropped(t *testing.T) {
	rows := []OutcomeRow{
		{ContactID: 1, Quarter: 0},
		{ContactID: 1, Quarter: 3},
		{ContactID: 2, Quarter: 5},
	}
	if n := UnknownQuarters(rows); n != 2 {
		t.Fatalf("UnknownQuarters = %d, want 2", n)
	}
	got := AggregateOutcomes(rows)
	if len(got) != 1 || got[0].Quarters[3] == nil || got[0].Quarters[0] != nil {
		t.Fatalf("AggregateOutcomes = %+v", got)
	}
}
