package storage

import (
	"context"
	"strings"

	"lynx/internal/core"
	"lynx/internal/report"
)

// Intake columns are read through a LEFT JOIN, so a client without an intake
// yields empty values rather than NULLs.
func coalesceText(alias string, cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "COALESCE(" + alias + "." + c + ", '')"
	}
	return strings.Join(parts, ", ")
}

var impairmentColumns = []string{"dialysis", "stroke", "seizure", "heart", "arthritis", "high_bp",
	"hearing_loss", "neuropathy", "pain", "asthma", "cancer", "musculoskeletal", "alzheimers",
	"allergies", "mental_health", "substance_abuse", "memory_loss", "learning_disability",
	"geriatric", "dexterity", "migraine", "communication"}

func coalesceFlags(alias string) string {
	parts := make([]string, len(impairmentColumns))
	for i, c := range impairmentColumns {
		parts[i] = "COALESCE(" + alias + "." + c + ", 0)"
	}
	return strings.Join(parts, ", ")
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

const billingRows = `-- name: BillingRows :many
SELECT a.id, a.authorization_number, a.authorization_type, c.first_name || ' ' || c.last_name,
    COALESCE(sa.agency, ''), COALESCE(oa.contact_name || ' - ' || oa.agency, ''),
    a.billing_rate, ln.billed_units
FROM lesson_notes ln
JOIN authorizations a ON a.id = ln.authorization_id
JOIN contacts c ON c.id = a.contact_id
LEFT JOIN service_areas sa ON sa.id = a.service_area_id
LEFT JOIN outside_agencies oa ON oa.id = a.outside_agency_id
WHERE CAST(strftime('%m', ln.date) AS INTEGER) = ? AND CAST(strftime('%Y', ln.date) AS INTEGER) = ?
ORDER BY c.last_name, c.first_name, sa.agency, ln.date, ln.id`

func (q *Queries) BillingRows(ctx context.Context, month, year int) ([]report.BillingRow, error) {
	return queryAll(ctx, q.db, billingRows, func(s scanner) (report.BillingRow, error) {
		var r report.BillingRow
		err := s.Scan(&r.AuthorizationID, &r.AuthorizationNumber, &r.AuthorizationType,
			&r.ClientName, &r.ServiceArea, &r.OutsideAgency, &r.BillingRate, &r.BilledUnits)
		return r, err
	}, month, year)
}

var sipMonthlyRows = `SELECT c.id, c.first_name || ' ' || c.last_name, c.first_name, c.last_name, ` +
	coalesceText("i", "age_group", "gender", "birth_date", "ethnicity", "degree", "eye_condition",
		"eye_condition_date", "education", "living_arrangement", "residence_type", "referred_by") + `, ` +
	coalesceFlags("i") + `
FROM sip_notes n
JOIN contacts c ON c.id = n.contact_id
LEFT JOIN intakes i ON i.contact_id = c.id
WHERE CAST(strftime('%m', n.note_date) AS INTEGER) = ?
    AND CAST(strftime('%Y', n.note_date) AS INTEGER) = ?
    AND c.sip_client = 1`

// SipMonthlyDemographicRows returns the month's SIP notes for clients with no
// notes in the earlier months of fiscalYear.
func (q *Queries) SipMonthlyDemographicRows(ctx context.Context, month, year int, fiscalYear string, earlierMonths []int) ([]report.SipMonthlyRow, error) {
	query := sipMonthlyRows
	args := []any{month, year}
	if len(earlierMonths) > 0 {
		query += `
    AND c.id NOT IN (
        SELECT contact_id FROM sip_notes
        WHERE fiscal_year = ? AND CAST(strftime('%m', note_date) AS INTEGER) IN (` + placeholders(len(earlierMonths)) + `))`
		args = append(args, fiscalYear)
		for _, m := range earlierMonths {
			args = append(args, m)
		}
	}
	query += `
ORDER BY c.last_name, c.first_name, n.note_date, n.id`

	return queryAll(ctx, q.db, query, func(s scanner) (report.SipMonthlyRow, error) {
		var r report.SipMonthlyRow
		dest := []any{&r.ContactID, &r.ClientName, &r.FirstName, &r.LastName, &r.AgeGroup, &r.Gender,
			&r.BirthDate, &r.Ethnicity, &r.Degree, &r.EyeCondition, &r.EyeConditionDate, &r.Education,
			&r.LivingArrangement, &r.ResidenceType, &r.ReferredBy}
		err := s.Scan(append(dest, impairmentDest(&r.Impairments)...)...)
		return r, err
	}, args...)
}

// newInQuarter restricts notes to SIP clients with no notes earlier in the
// same fiscal year.
const newInQuarter = `
WHERE n.fiscal_year = ? AND n.quarter = ? AND c.sip_client = 1
    AND c.id NOT IN (SELECT contact_id FROM sip_notes WHERE quarter < ? AND fiscal_year = ?)
ORDER BY c.last_name, c.first_name, n.note_date, n.id`

const sipOutcomeRows = `-- name: SipOutcomeRows :many
SELECT c.id, c.first_name || ' ' || c.last_name, n.quarter, n.independent_living,
    n.vision_screening, n.treatment, n.at_devices, n.at_services, n.orientation, n.communications,
    n.dls, n.support, n.advocacy, n.counseling, n.information, n.services,
    COALESCE(p.living_plan_progress, ''), COALESCE(p.community_plan_progress, ''),
    COALESCE(p.at_outcomes, ''), COALESCE(p.ila_outcomes, '')
FROM sip_notes n
JOIN contacts c ON c.id = n.contact_id
LEFT JOIN sip_plans p ON p.id = n.sip_plan_id` + newInQuarter

func (q *Queries) SipOutcomeRows(ctx context.Context, fiscalYear string, quarter int) ([]report.OutcomeRow, error) {
	return queryAll(ctx, q.db, sipOutcomeRows, func(s scanner) (report.OutcomeRow, error) {
		var r report.OutcomeRow
		dest := []any{&r.ContactID, &r.ClientName, &r.Quarter}
		dest = append(dest, servicesDest(&r.SipServices)...)
		dest = append(dest, &r.LivingPlanProgress, &r.CommunityPlanProgress, &r.AtOutcomes, &r.IlaOutcomes)
		err := s.Scan(dest...)
		return r, err
	}, fiscalYear, quarter, quarter, fiscalYear)
}

var sipQuarterDemographicRows = `SELECT c.id, c.first_name || ' ' || c.last_name,
    COALESCE((SELECT county FROM addresses WHERE contact_id = c.id ORDER BY id LIMIT 1), ''),
    n.note_date, ` +
	coalesceText("i", "age_group", "gender", "ethnicity", "other_ethnicity", "degree",
		"eye_condition", "residence_type", "referred_by") + `, ` +
	coalesceFlags("i") + `
FROM sip_notes n
JOIN contacts c ON c.id = n.contact_id
LEFT JOIN intakes i ON i.contact_id = c.id` + newInQuarter

func (q *Queries) SipQuarterDemographicRows(ctx context.Context, fiscalYear string, quarter int) ([]report.SipQuarterDemographicRow, error) {
	return queryAll(ctx, q.db, sipQuarterDemographicRows, func(s scanner) (report.SipQuarterDemographicRow, error) {
		var r report.SipQuarterDemographicRow
		dest := []any{&r.ContactID, &r.ClientName, &r.County, &r.NoteDate, &r.AgeGroup, &r.Gender,
			&r.Ethnicity, &r.OtherEthnicity, &r.Degree, &r.EyeCondition, &r.ResidenceType, &r.ReferredBy}
		err := s.Scan(append(dest, impairmentDest(&r.Impairments)...)...)
		return r, err
	}, fiscalYear, quarter, quarter, fiscalYear)
}

const firstSipNoteDates = `-- name: FirstSipNoteDates :many
SELECT contact_id, MIN(note_date) FROM sip_notes
WHERE note_date != '' AND contact_id IN (
    SELECT contact_id FROM sip_notes WHERE fiscal_year = ? AND quarter = ?)
GROUP BY contact_id`

// FirstSipNoteDates maps every client with a note in the quarter to the date
// of their earliest SIP note.
func (q *Queries) FirstSipNoteDates(ctx context.Context, fiscalYear string, quarter int) (map[int64]core.Date, error) {
	type first struct {
		id   int64
		date core.Date
	}
	rows, err := queryAll(ctx, q.db, firstSipNoteDates, func(s scanner) (first, error) {
		var f first
		err := s.Scan(&f.id, &f.date)
		return f, err
	}, fiscalYear, quarter)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]core.Date, len(rows))
	for _, f := range rows {
		out[f.id] = f.date
	}
	return out, nil
}

const searchContacts = `-- name: SearchContacts :many
WITH info AS (
    SELECT c.id, c.first_name || ' ' || c.last_name AS full_name, c.first_name, c.last_name,
        COALESCE(i.intake_date, '') AS intake_date, COALESCE(i.age_group, '') AS age_group,
        COALESCE(a.county, '') AS county, COALESCE(e.email, '') AS email,
        COALESCE(p.phone, '') AS phone,
        REPLACE(REPLACE(REPLACE(REPLACE(COALESCE(p.phone, ''), '(', ''), ')', ''), '-', ''), ' ', '') AS phone_digits,
        COALESCE(a.address_one, '') AS address_one, COALESCE(a.address_two, '') AS address_two,
        COALESCE(a.suite, '') AS suite, COALESCE(a.city, '') AS city, COALESCE(a.state, '') AS state,
        COALESCE(a.zip_code, '') AS zip_code, COALESCE(a.region, '') AS region,
        COALESCE(a.bad_address, 0) AS bad_address, c.do_not_contact, c.deceased, c.remove_mailing
    FROM contacts c
    LEFT JOIN intakes i ON i.contact_id = c.id
    LEFT JOIN addresses a ON a.id = (SELECT MIN(id) FROM addresses WHERE contact_id = c.id)
    LEFT JOIN phones p ON p.id = (SELECT MIN(id) FROM phones WHERE contact_id = c.id)
    LEFT JOIN emails e ON e.id = (SELECT MIN(id) FROM emails WHERE contact_id = c.id)
)
SELECT id, full_name, first_name, last_name, intake_date, age_group, county, email, phone,
    address_one, address_two, suite, city, state, zip_code, region, bad_address, do_not_contact,
    deceased, remove_mailing
FROM info
WHERE ? = '' OR full_name LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR zip_code LIKE ?
    OR county LIKE ? OR phone_digits LIKE ? OR intake_date LIKE ? OR email LIKE ?
ORDER BY last_name, first_name, id`

// SearchContacts matches term case-insensitively against names, zip, county,
// phone digits, intake date and email. An empty term matches everyone.
func (q *Queries) SearchContacts(ctx context.Context, term string) ([]report.ContactRow, error) {
	term = strings.TrimSpace(term)
	pattern := "%" + term + "%"
	args := []any{term}
	for i := 0; i < 8; i++ {
		args = append(args, pattern)
	}
	return queryAll(ctx, q.db, searchContacts, func(s scanner) (report.ContactRow, error) {
		var r report.ContactRow
		err := s.Scan(&r.ContactID, &r.FullName, &r.FirstName, &r.LastName, &r.IntakeDate, &r.AgeGroup,
			&r.County, &r.Email, &r.Phone, &r.AddressOne, &r.AddressTwo, &r.Suite, &r.City, &r.State,
			&r.ZipCode, &r.Region, &r.BadAddress, &r.DoNotContact, &r.Deceased, &r.RemoveMailing)
		return r, err
	}, args...)
}
