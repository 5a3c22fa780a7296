package storage

import (
	"context"

	"lynx/internal/core"
)

const sipPlanColumns = `id, contact_id, plan_name, note, living_plan_progress, community_plan_progress,
    at_outcomes, ila_outcomes`

func scanSipPlan(s scanner) (core.SipPlan, error) {
	var p core.SipPlan
	err := s.Scan(&p.ID, &p.ContactID, &p.PlanName, &p.Note, &p.LivingPlanProgress,
		&p.CommunityPlanProgress, &p.AtOutcomes, &p.IlaOutcomes)
	return p, err
}

const createSipPlan = `-- name: CreateSipPlan :one
INSERT INTO sip_plans (contact_id, plan_name, note, living_plan_progress, community_plan_progress,
    at_outcomes, ila_outcomes)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateSipPlan(ctx context.Context, p core.SipPlan) (int64, error) {
	return insertID(ctx, q.db, createSipPlan,
		p.ContactID, p.PlanName, p.Note, p.LivingPlanProgress, p.CommunityPlanProgress,
		p.AtOutcomes, p.IlaOutcomes)
}

const getSipPlan = `-- name: GetSipPlan :one
SELECT ` + sipPlanColumns + ` FROM sip_plans WHERE id = ?`

func (q *Queries) GetSipPlan(ctx context.Context, id int64) (core.SipPlan, error) {
	return one(q.db.QueryRowContext(ctx, getSipPlan, id), scanSipPlan)
}

const listSipPlans = `-- name: ListSipPlans :many
SELECT ` + sipPlanColumns + ` FROM sip_plans WHERE contact_id = ? ORDER BY id DESC`

func (q *Queries) ListSipPlans(ctx context.Context, contactID int64) ([]core.SipPlan, error) {
	return queryAll(ctx, q.db, listSipPlans, scanSipPlan, contactID)
}

const updateSipPlan = `-- name: UpdateSipPlan :exec
UPDATE sip_plans SET plan_name = ?, note = ?, living_plan_progress = ?, community_plan_progress = ?,
    at_outcomes = ?, ila_outcomes = ?
WHERE id = ?`

func (q *Queries) UpdateSipPlan(ctx context.Context, p core.SipPlan) error {
	return execAffected(ctx, q.db, updateSipPlan,
		p.PlanName, p.Note, p.LivingPlanProgress, p.CommunityPlanProgress, p.AtOutcomes,
		p.IlaOutcomes, p.ID)
}

const deleteSipPlan = `-- name: DeleteSipPlan :exec
DELETE FROM sip_plans WHERE id = ?`

func (q *Queries) DeleteSipPlan(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteSipPlan, id)
}

const sipNoteColumns = `id, contact_id, sip_plan_id, note_date, quarter, fiscal_year, class_hours,
    instructor, note, independent_living, vision_screening, treatment, at_devices, at_services,
    orientation, communications, dls, support, advocacy, counseling, information, services`

func servicesDest(s *core.SipServices) []any {
	return []any{&s.IndependentLiving, &s.VisionScreening, &s.Treatment, &s.AtDevices,
		&s.AtServices, &s.Orientation, &s.Communications, &s.Dls, &s.Support, &s.Advocacy,
		&s.Counseling, &s.Information, &s.Services}
}

func servicesArgs(s core.SipServices) []any {
	return []any{s.IndependentLiving, s.VisionScreening, s.Treatment, s.AtDevices,
		s.AtServices, s.Orientation, s.Communications, s.Dls, s.Support, s.Advocacy,
		s.Counseling, s.Information, s.Services}
}

func scanSipNote(s scanner) (core.SipNote, error) {
	var n core.SipNote
	dest := []any{&n.ID, &n.ContactID, &n.SipPlanID, &n.NoteDate, &n.Quarter, &n.FiscalYear,
		&n.ClassHours, &n.Instructor, &n.Note}
	err := s.Scan(append(dest, servicesDest(&n.SipServices)...)...)
	return n, err
}

const createSipNote = `-- name: CreateSipNote :one
INSERT INTO sip_notes (contact_id, sip_plan_id, note_date, quarter, fiscal_year, class_hours,
    instructor, note, independent_living, vision_screening, treatment, at_devices, at_services,
    orientation, communications, dls, support, advocacy, counseling, information, services)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateSipNote(ctx context.Context, n core.SipNote) (int64, error) {
	args := []any{n.ContactID, n.SipPlanID, n.NoteDate, n.Quarter, n.FiscalYear, n.ClassHours,
		n.Instructor, n.Note}
	return insertID(ctx, q.db, createSipNote, append(args, servicesArgs(n.SipServices)...)...)
}

const getSipNote = `-- name: GetSipNote :one
SELECT ` + sipNoteColumns + ` FROM sip_notes WHERE id = ?`

func (q *Queries) GetSipNote(ctx context.Context, id int64) (core.SipNote, error) {
	return one(q.db.QueryRowContext(ctx, getSipNote, id), scanSipNote)
}

const listSipNotes = `-- name: ListSipNotes :many
SELECT ` + sipNoteColumns + ` FROM sip_notes WHERE contact_id = ? ORDER BY note_date DESC, id DESC`

func (q *Queries) ListSipNotes(ctx context.Context, contactID int64) ([]core.SipNote, error) {
	return queryAll(ctx, q.db, listSipNotes, scanSipNote, contactID)
}

const updateSipNote = `-- name: UpdateSipNote :exec
UPDATE sip_notes SET sip_plan_id = ?, note_date = ?, quarter = ?, fiscal_year = ?, class_hours = ?,
    instructor = ?, note = ?, independent_living = ?, vision_screening = ?, treatment = ?,
    at_devices = ?, at_services = ?, orientation = ?, communications = ?, dls = ?, support = ?,
    advocacy = ?, counseling = ?, information = ?, services = ?
WHERE id = ?`

func (q *Queries) UpdateSipNote(ctx context.Context, n core.SipNote) error {
	args := []any{n.SipPlanID, n.NoteDate, n.Quarter, n.FiscalYear, n.ClassHours, n.Instructor, n.Note}
	args = append(args, servicesArgs(n.SipServices)...)
	return execAffected(ctx, q.db, updateSipNote, append(args, n.ID)...)
}

const deleteSipNote = `-- name: DeleteSipNote :exec
DELETE FROM sip_notes WHERE id = ?`

func (q *Queries) DeleteSipNote(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteSipNote, id)
}
