package storage

import (
	"context"

	"lynx/internal/core"
)

const contactColumns = `id, first_name, middle_name, last_name, company, active, do_not_contact, deceased,
    remove_mailing, sip_client, core_client, volunteer, notes`

func scanContact(s scanner) (core.Contact, error) {
	var c core.Contact
	err := s.Scan(&c.ID, &c.FirstName, &c.MiddleName, &c.LastName, &c.Company, &c.Active,
		&c.DoNotContact, &c.Deceased, &c.RemoveMailing, &c.SipClient, &c.CoreClient,
		&c.Volunteer, &c.Notes)
	return c, err
}

const createContact = `-- name: CreateContact :one
INSERT INTO contacts (first_name, middle_name, last_name, company, active, do_not_contact, deceased,
    remove_mailing, sip_client, core_client, volunteer, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + contactColumns

func (q *Queries) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	row := q.db.QueryRowContext(ctx, createContact,
		c.FirstName, c.MiddleName, c.LastName, c.Company, c.Active, c.DoNotContact, c.Deceased,
		c.RemoveMailing, c.SipClient, c.CoreClient, c.Volunteer, c.Notes)
	return one(row, scanContact)
}

const getContact = `-- name: GetContact :one
SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

func (q *Queries) GetContact(ctx context.Context, id int64) (core.Contact, error) {
	return one(q.db.QueryRowContext(ctx, getContact, id), scanContact)
}

const listContacts = `-- name: ListContacts :many
SELECT ` + contactColumns + ` FROM contacts
ORDER BY last_name, first_name, id
LIMIT ? OFFSET ?`

func (q *Queries) ListContacts(ctx context.Context, limit, offset int) ([]core.Contact, error) {
	return queryAll(ctx, q.db, listContacts, scanContact, limit, offset)
}

const updateContact = `-- name: UpdateContact :exec
UPDATE contacts SET first_name = ?, middle_name = ?, last_name = ?, company = ?, active = ?,
    do_not_contact = ?, deceased = ?, remove_mailing = ?, sip_client = ?, core_client = ?,
    volunteer = ?, notes = ?
WHERE id = ?`

func (q *Queries) UpdateContact(ctx context.Context, c core.Contact) error {
	return execAffected(ctx, q.db, updateContact,
		c.FirstName, c.MiddleName, c.LastName, c.Company, c.Active, c.DoNotContact, c.Deceased,
		c.RemoveMailing, c.SipClient, c.CoreClient, c.Volunteer, c.Notes, c.ID)
}

const deleteContact = `-- name: DeleteContact :exec
DELETE FROM contacts WHERE id = ?`

func (q *Queries) DeleteContact(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteContact, id)
}

const createAddress = `-- name: CreateAddress :one
INSERT INTO addresses (contact_id, address_one, address_two, suite, city, state, zip_code, county,
    country, region, bad_address)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateAddress(ctx context.Context, a core.Address) (int64, error) {
	return insertID(ctx, q.db, createAddress,
		a.ContactID, a.AddressOne, a.AddressTwo, a.Suite, a.City, a.State, a.ZipCode, a.County,
		a.Country, a.Region, a.BadAddress)
}

const listAddresses = `-- name: ListAddresses :many
SELECT id, contact_id, address_one, address_two, suite, city, state, zip_code, county, country,
    region, bad_address
FROM addresses WHERE contact_id = ? ORDER BY id`

func (q *Queries) ListAddresses(ctx context.Context, contactID int64) ([]core.Address, error) {
	return queryAll(ctx, q.db, listAddresses, func(s scanner) (core.Address, error) {
		var a core.Address
		err := s.Scan(&a.ID, &a.ContactID, &a.AddressOne, &a.AddressTwo, &a.Suite, &a.City,
			&a.State, &a.ZipCode, &a.County, &a.Country, &a.Region, &a.BadAddress)
		return a, err
	}, contactID)
}

const createPhone = `-- name: CreatePhone :one
INSERT INTO phones (contact_id, phone, phone_type, active) VALUES (?, ?, ?, ?) RETURNING id`

func (q *Queries) CreatePhone(ctx context.Context, p core.Phone) (int64, error) {
	return insertID(ctx, q.db, createPhone, p.ContactID, p.Phone, p.PhoneType, p.Active)
}

const listPhones = `-- name: ListPhones :many
SELECT id, contact_id, phone, phone_type, active FROM phones WHERE contact_id = ? ORDER BY id`

func (q *Queries) ListPhones(ctx context.Context, contactID int64) ([]core.Phone, error) {
	return queryAll(ctx, q.db, listPhones, func(s scanner) (core.Phone, error) {
		var p core.Phone
		err := s.Scan(&p.ID, &p.ContactID, &p.Phone, &p.PhoneType, &p.Active)
		return p, err
	}, contactID)
}

const createEmail = `-- name: CreateEmail :one
INSERT INTO emails (contact_id, email, email_type, active) VALUES (?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateEmail(ctx context.Context, e core.Email) (int64, error) {
	return insertID(ctx, q.db, createEmail, e.ContactID, e.Email, e.EmailType, e.Active)
}

const listEmails = `-- name: ListEmails :many
SELECT id, contact_id, email, email_type, active FROM emails WHERE contact_id = ? ORDER BY id`

func (q *Queries) ListEmails(ctx context.Context, contactID int64) ([]core.Email, error) {
	return queryAll(ctx, q.db, listEmails, func(s scanner) (core.Email, error) {
		var e core.Email
		err := s.Scan(&e.ID, &e.ContactID, &e.Email, &e.EmailType, &e.Active)
		return e, err
	}, contactID)
}

const createEmergencyContact = `-- name: CreateEmergencyContact :one
INSERT INTO emergency_contacts (contact_id, name, phone, email, notes) VALUES (?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateEmergencyContact(ctx context.Context, e core.EmergencyContact) (int64, error) {
	return insertID(ctx, q.db, createEmergencyContact, e.ContactID, e.Name, e.Phone, e.Email, e.Notes)
}

const listEmergencyContacts = `-- name: ListEmergencyContacts :many
SELECT id, contact_id, name, phone, email, notes FROM emergency_contacts WHERE contact_id = ? ORDER BY id`

func (q *Queries) ListEmergencyContacts(ctx context.Context, contactID int64) ([]core.EmergencyContact, error) {
	return queryAll(ctx, q.db, listEmergencyContacts, func(s scanner) (core.EmergencyContact, error) {
		var e core.EmergencyContact
		err := s.Scan(&e.ID, &e.ContactID, &e.Name, &e.Phone, &e.Email, &e.Notes)
		return e, err
	}, contactID)
}

const createIntakeNote = `-- name: CreateIntakeNote :one
INSERT INTO intake_notes (contact_id, note, created) VALUES (?, ?, ?) RETURNING id`

func (q *Queries) CreateIntakeNote(ctx context.Context, n core.IntakeNote) (int64, error) {
	return insertID(ctx, q.db, createIntakeNote, n.ContactID, n.Note, n.Created)
}

const listIntakeNotes = `-- name: ListIntakeNotes :many
SELECT id, contact_id, note, created FROM intake_notes WHERE contact_id = ? ORDER BY created DESC, id DESC`

func (q *Queries) ListIntakeNotes(ctx context.Context, contactID int64) ([]core.IntakeNote, error) {
	return queryAll(ctx, q.db, listIntakeNotes, func(s scanner) (core.IntakeNote, error) {
		var n core.IntakeNote
		err := s.Scan(&n.ID, &n.ContactID, &n.Note, &n.Created)
		return n, err
	}, contactID)
}

const intakeColumns = `id, contact_id, intake_date, age_group, gender, birth_date, ethnicity, other_ethnicity,
    education, living_arrangement, residence_type, eye_condition, eye_condition_date, degree,
    referred_by, payment_source, dialysis, stroke, seizure, heart, arthritis, high_bp,
    hearing_loss, neuropathy, pain, asthma, cancer, musculoskeletal, alzheimers, allergies,
    mental_health, substance_abuse, memory_loss, learning_disability, geriatric, dexterity,
    migraine, communication`

// impairmentDest lists scan destinations in intake column order.
func impairmentDest(i *core.Impairments) []any {
	return []any{&i.Dialysis, &i.Stroke, &i.Seizure, &i.Heart, &i.Arthritis, &i.HighBP,
		&i.HearingLoss, &i.Neuropathy, &i.Pain, &i.Asthma, &i.Cancer, &i.Musculoskeletal,
		&i.Alzheimers, &i.Allergies, &i.MentalHealth, &i.SubstanceAbuse, &i.MemoryLoss,
		&i.LearningDisability, &i.Geriatric, &i.Dexterity, &i.Migraine, &i.Communication}
}

func impairmentArgs(i core.Impairments) []any {
	return []any{i.Dialysis, i.Stroke, i.Seizure, i.Heart, i.Arthritis, i.HighBP,
		i.HearingLoss, i.Neuropathy, i.Pain, i.Asthma, i.Cancer, i.Musculoskeletal,
		i.Alzheimers, i.Allergies, i.MentalHealth, i.SubstanceAbuse, i.MemoryLoss,
		i.LearningDisability, i.Geriatric, i.Dexterity, i.Migraine, i.Communication}
}

const getIntake = `-- name: GetIntake :one
SELECT ` + intakeColumns + ` FROM intakes WHERE contact_id = ?`

func (q *Queries) GetIntake(ctx context.Context, contactID int64) (core.Intake, error) {
	var in core.Intake
	dest := []any{&in.ID, &in.ContactID, &in.IntakeDate, &in.AgeGroup, &in.Gender, &in.BirthDate,
		&in.Ethnicity, &in.OtherEthnicity, &in.Education, &in.LivingArrangement, &in.ResidenceType,
		&in.EyeCondition, &in.EyeConditionDate, &in.Degree, &in.ReferredBy, &in.PaymentSource}
	dest = append(dest, impairmentDest(&in.Impairments)...)
	err := q.db.QueryRowContext(ctx, getIntake, contactID).Scan(dest...)
	return in, mapErr(err)
}

const upsertIntake = `-- name: UpsertIntake :one
INSERT INTO intakes (contact_id, intake_date, age_group, gender, birth_date, ethnicity,
    other_ethnicity, education, living_arrangement, residence_type, eye_condition,
    eye_condition_date, degree, referred_by, payment_source, dialysis, stroke, seizure, heart,
    arthritis, high_bp, hearing_loss, neuropathy, pain, asthma, cancer, musculoskeletal,
    alzheimers, allergies, mental_health, substance_abuse, memory_loss, learning_disability,
    geriatric, dexterity, migraine, communication)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (contact_id) DO UPDATE SET
    intake_date = excluded.intake_date, age_group = excluded.age_group, gender = excluded.gender,
    birth_date = excluded.birth_date, ethnicity = excluded.ethnicity,
    other_ethnicity = excluded.other_ethnicity, education = excluded.education,
    living_arrangement = excluded.living_arrangement, residence_type = excluded.residence_type,
    eye_condition = excluded.eye_condition, eye_condition_date = excluded.eye_condition_date,
    degree = excluded.degree, referred_by = excluded.referred_by,
    payment_source = excluded.payment_source, dialysis = excluded.dialysis,
    stroke = excluded.stroke, seizure = excluded.seizure, heart = excluded.heart,
    arthritis = excluded.arthritis, high_bp = excluded.high_bp,
    hearing_loss = excluded.hearing_loss, neuropathy = excluded.neuropathy, pain = excluded.pain,
    asthma = excluded.asthma, cancer = excluded.cancer, musculoskeletal = excluded.musculoskeletal,
    alzheimers = excluded.alzheimers, allergies = excluded.allergies,
    mental_health = excluded.mental_health, substance_abuse = excluded.substance_abuse,
    memory_loss = excluded.memory_loss, learning_disability = excluded.learning_disability,
    geriatric = excluded.geriatric, dexterity = excluded.dexterity, migraine = excluded.migraine,
    communication = excluded.communication
RETURNING id`

func (q *Queries) UpsertIntake(ctx context.Context, in core.Intake) (int64, error) {
	args := []any{in.ContactID, in.IntakeDate, in.AgeGroup, in.Gender, in.BirthDate, in.Ethnicity,
		in.OtherEthnicity, in.Education, in.LivingArrangement, in.ResidenceType, in.EyeCondition,
		in.EyeConditionDate, in.Degree, in.ReferredBy, in.PaymentSource}
	args = append(args, impairmentArgs(in.Impairments)...)
	return insertID(ctx, q.db, upsertIntake, args...)
}

const createVolunteer = `-- name: CreateVolunteer :one
INSERT INTO volunteers (contact_id, skills, availability, notes) VALUES (?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateVolunteer(ctx context.Context, v core.Volunteer) (int64, error) {
	return insertID(ctx, q.db, createVolunteer, v.ContactID, v.Skills, v.Availability, v.Notes)
}

const markVolunteer = `-- name: MarkVolunteer :exec
UPDATE contacts SET volunteer = 1 WHERE id = ?`

func (q *Queries) MarkVolunteer(ctx context.Context, contactID int64) error {
	return execAffected(ctx, q.db, markVolunteer, contactID)
}

const createServiceArea = `-- name: CreateServiceArea :one
INSERT INTO service_areas (agency) VALUES (?) RETURNING id`

func (q *Queries) CreateServiceArea(ctx context.Context, s core.ServiceArea) (int64, error) {
	return insertID(ctx, q.db, createServiceArea, s.Agency)
}

const listServiceAreas = `-- name: ListServiceAreas :many
SELECT id, agency FROM service_areas ORDER BY agency`

func (q *Queries) ListServiceAreas(ctx context.Context) ([]core.ServiceArea, error) {
	return queryAll(ctx, q.db, listServiceAreas, func(s scanner) (core.ServiceArea, error) {
		var a core.ServiceArea
		err := s.Scan(&a.ID, &a.Agency)
		return a, err
	})
}

const createOutsideAgency = `-- name: CreateOutsideAgency :one
INSERT INTO outside_agencies (agency, contact_name, contact_id) VALUES (?, ?, ?) RETURNING id`

func (q *Queries) CreateOutsideAgency(ctx context.Context, o core.OutsideAgency) (int64, error) {
	return insertID(ctx, q.db, createOutsideAgency, o.Agency, o.ContactName, o.ContactID)
}

const outsideAgencyColumns = `id, agency, contact_name, contact_id`

func scanOutsideAgency(s scanner) (core.OutsideAgency, error) {
	var o core.OutsideAgency
	err := s.Scan(&o.ID, &o.Agency, &o.ContactName, &o.ContactID)
	return o, err
}

const getOutsideAgency = `-- name: GetOutsideAgency :one
SELECT ` + outsideAgencyColumns + ` FROM outside_agencies WHERE id = ?`

func (q *Queries) GetOutsideAgency(ctx context.Context, id int64) (core.OutsideAgency, error) {
	return one(q.db.QueryRowContext(ctx, getOutsideAgency, id), scanOutsideAgency)
}

const listOutsideAgencies = `-- name: ListOutsideAgencies :many
SELECT ` + outsideAgencyColumns + ` FROM outside_agencies ORDER BY agency, contact_name`

func (q *Queries) ListOutsideAgencies(ctx context.Context) ([]core.OutsideAgency, error) {
	return queryAll(ctx, q.db, listOutsideAgencies, scanOutsideAgency)
}
