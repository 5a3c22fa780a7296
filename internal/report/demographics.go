package report

import (
	"strconv"
	"strings"
	"time"

	"lynx/internal/core"
)

// SipMonthlyRow is a SIP note in the reported month joined with its client's
// intake.
type SipMonthlyRow struct {
	ContactID         int64
	ClientName        string
	FirstName         string
	LastName          string
	AgeGroup          string
	Gender            string
	BirthDate         core.Date
	Ethnicity         string
	Degree            string
	EyeCondition      string
	EyeConditionDate  string
	Education         string
	LivingArrangement string
	ResidenceType     string
	ReferredBy        string
	core.Impairments
}

// impairmentLabels lists the non-visual impairments in report order.
var impairmentLabels = []struct {
	label string
	set   func(core.Impairments) bool
}{
	{"Dialysis", func(i core.Impairments) bool { return i.Dialysis }},
	{"Stroke", func(i core.Impairments) bool { return i.Stroke }},
	{"Seizure", func(i core.Impairments) bool { return i.Seizure }},
	{"Cardiovascular", func(i core.Impairments) bool { return i.Heart }},
	{"Arthritis", func(i core.Impairments) bool { return i.Arthritis }},
	{"Hypertension", func(i core.Impairments) bool { return i.HighBP }},
	{"Hearing Loss", func(i core.Impairments) bool { return i.HearingLoss }},
	{"Neuropathy", func(i core.Impairments) bool { return i.Neuropathy }},
	{"Pain", func(i core.Impairments) bool { return i.Pain }},
	{"Asthma", func(i core.Impairments) bool { return i.Asthma }},
	{"Cancer", func(i core.Impairments) bool { return i.Cancer }},
	{"Musculoskeletal", func(i core.Impairments) bool { return i.Musculoskeletal }},
	{"Alzheimers", func(i core.Impairments) bool { return i.Alzheimers }},
	{"Allergies", func(i core.Impairments) bool { return i.Allergies }},
	{"Mental Health", func(i core.Impairments) bool { return i.MentalHealth }},
	{"Substance Abuse", func(i core.Impairments) bool { return i.SubstanceAbuse }},
	{"Memory Loss", func(i core.Impairments) bool { return i.MemoryLoss }},
	{"Learning Disability", func(i core.Impairments) bool { return i.LearningDisability }},
	{"Other Geriatric", func(i core.Impairments) bool { return i.Geriatric }},
	{"Mobility", func(i core.Impairments) bool { return i.Dexterity }},
	{"Migraine", func(i core.Impairments) bool { return i.Migraine }},
}

// ImpairmentList joins the display labels of every set impairment.
func ImpairmentList(i core.Impairments) string {
	var labels []string
	for _, l := range impairmentLabels {
		if l.set(i) {
			labels = append(labels, l.label)
		}
	}
	return strings.Join(labels, ", ")
}

var monthlyHeader = []string{
	"Client Name", "First Name", "Last Name", "Age Group", "Gender", "Birth Date", "Race/Ethnicity",
	"Visual Impairment at Time of Intake", "Major Cause of Visual Impairment",
	"Non-Visual Impairment", "On-Set of Significant Vision Loss", "Highest Level of Education Completed",
	"Type of Living Arrangement", "Setting of Residence", "Source of Referral",
}

// SipMonthlyDemographicReport lists each client once, at their first row.
// Rows are expected to already exclude clients seen earlier in the fiscal
// year.
func SipMonthlyDemographicReport(rows []SipMonthlyRow, month, year int, rules Rules) Document {
	doc := Document{
		Name:   "SIP Demographic Report",
		Period: core.MonthName(month) + " - " + strconv.Itoa(year),
		Header: monthlyHeader,
	}
	seen := make(map[int64]bool)
	for _, r := range rows {
		if seen[r.ContactID] || rules.excluded(r.ContactID) {
			continue
		}
		seen[r.ContactID] = true
		doc.Rows = append(doc.Rows, []string{
			r.ClientName, r.FirstName, r.LastName, r.AgeGroup, r.Gender, r.BirthDate.String(),
			r.Ethnicity, r.Degree, r.EyeCondition, ImpairmentList(r.Impairments),
			r.EyeConditionDate, r.Education, r.LivingArrangement, r.ResidenceType, r.ReferredBy,
		})
	}
	return doc
}

// SipQuarterDemographicRow is a SIP note in the reported quarter joined with
// its client's intake and county.
type SipQuarterDemographicRow struct {
	ContactID      int64
	ClientName     string
	County         string
	NoteDate       core.Date
	AgeGroup       string
	Gender         string
	Ethnicity      string
	OtherEthnicity string
	Degree         string
	EyeCondition   string
	ResidenceType  string
	ReferredBy     string
	core.Impairments
}

// ImpairmentCategories collapses intake flags into the reported taxonomy.
type ImpairmentCategories struct {
	Hearing       bool
	Mobility      bool
	Communication bool
	Cognitive     bool
	Mental        bool
	Other         bool
}

// Categorize maps individual impairments onto reporting categories.
func Categorize(i core.Impairments) ImpairmentCategories {
	return ImpairmentCategories{
		Hearing:       i.HearingLoss,
		Communication: i.Communication,
		Mobility:      i.Arthritis || i.Dexterity || i.Neuropathy || i.Musculoskeletal,
		Cognitive:     i.Alzheimers || i.MemoryLoss || i.LearningDisability,
		Mental:        i.MentalHealth || i.SubstanceAbuse,
		Other: i.Dialysis || i.Migraine || i.Geriatric || i.Allergies || i.Cancer ||
			i.Asthma || i.Pain || i.HighBP || i.Heart || i.Stroke || i.Seizure,
	}
}

const hispanicOrLatino = "Hispanic or Latino"

// Gender collapses self-reported gender into the three reported options.
func Gender(g string) string {
	if g == "Male" || g == "Female" {
		return g
	}
	return "Did Not Self-Identify Gender"
}

// RaceEthnicity derives the reported race and the Hispanic flag from the two
// intake ethnicity answers.
func RaceEthnicity(ethnicity, other string) (race string, hispanic bool) {
	hispanic = ethnicity == hispanicOrLatino || other == hispanicOrLatino
	switch {
	case other != "" && !hispanic:
		race = "2 or More Races"
	case ethnicity == "Other":
		race = "Did not self identify Race"
	default:
		race = ethnicity
	}
	return race, hispanic
}

const (
	ServedThisYear  = "Case open between Oct. 1 - Sept. 30"
	ServedPriorYear = "Case open prior to Oct. 1"
	ServedUnknown   = "Unknown"
)

// Served classifies a client by their first ever SIP note against October 1
// of the fiscal start year.
func Served(first core.Date, startYear int) string {
	if first.IsZero() {
		return ServedUnknown
	}
	start := time.Date(startYear, time.October, 1, 0, 0, 0, 0, time.UTC)
	if first.Before(start) {
		return ServedPriorYear
	}
	return ServedThisYear
}

var quarterlyDemographicHeader = []string{
	"Program Participant", "Individuals Served", "Age at Application", "Gender", "Race",
	"Ethnicity", "Degree of Visual Impairment", "Major Cause of Visual Impairment",
	"Hearing Impairment", "Mobility Impairment", "Communication Impairment",
	"Cognitive or Intellectual Impairment", "Mental Health Impairment", "Other Impairment",
	"Type of Residence", "Source of Referral", "County",
}

// SipQuarterlyDemographicReport lists each new client of the quarter once.
// firstNotes maps a client to the date of their earliest SIP note.
func SipQuarterlyDemographicReport(rows []SipQuarterDemographicRow, firstNotes map[int64]core.Date, quarter, startYear int, rules Rules) Document {
	doc := Document{
		Name:   "SIP Quarterly Demographic Report",
		Period: "Q" + strconv.Itoa(quarter) + " - " + core.FiscalYear(startYear),
		Header: quarterlyDemographicHeader,
	}
	seen := make(map[int64]bool)
	for _, r := range rows {
		if seen[r.ContactID] {
			continue
		}
		seen[r.ContactID] = true

		served := ServedUnknown
		if !r.NoteDate.IsZero() {
			first, ok := firstNotes[r.ContactID]
			if !ok || first.IsZero() {
				first = r.NoteDate
			}
			served = Served(first, startYear)
		}
		race, hispanic := RaceEthnicity(r.Ethnicity, r.OtherEthnicity)
		cat := Categorize(r.Impairments)

		doc.Rows = append(doc.Rows, []string{
			r.ClientName, served, r.AgeGroup, Gender(r.Gender), race, yesNo(hispanic),
			r.Degree, r.EyeCondition, yesNo(cat.Hearing), yesNo(cat.Mobility),
			yesNo(cat.Communication), yesNo(cat.Cognitive), yesNo(cat.Mental), yesNo(cat.Other),
			r.ResidenceType, rules.referral(r.ReferredBy), r.County,
		})
	}
	return doc
}
