package storage

import (
	"context"

	"lynx/internal/core"
)

const authorizationColumns = `id, contact_id, service_area_id, outside_agency_id, authorization_number,
    authorization_type, start_date, end_date, total_time, billing_rate, notes, active`

func scanAuthorization(s scanner) (core.Authorization, error) {
	var a core.Authorization
	err := s.Scan(&a.ID, &a.ContactID, &a.ServiceAreaID, &a.OutsideAgencyID, &a.AuthorizationNumber,
		&a.AuthorizationType, &a.StartDate, &a.EndDate, &a.TotalTime, &a.BillingRate, &a.Notes, &a.Active)
	return a, err
}

const createAuthorization = `-- name: CreateAuthorization :one
INSERT INTO authorizations (contact_id, service_area_id, outside_agency_id, authorization_number,
    authorization_type, start_date, end_date, total_time, billing_rate, notes, active)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateAuthorization(ctx context.Context, a core.Authorization) (int64, error) {
	return insertID(ctx, q.db, createAuthorization,
		a.ContactID, a.ServiceAreaID, a.OutsideAgencyID, a.AuthorizationNumber,
		string(a.AuthorizationType), a.StartDate, a.EndDate, a.TotalTime, a.BillingRate, a.Notes,
		a.Active)
}

const getAuthorization = `-- name: GetAuthorization :one
SELECT ` + authorizationColumns + ` FROM authorizations WHERE id = ?`

func (q *Queries) GetAuthorization(ctx context.Context, id int64) (core.Authorization, error) {
	return one(q.db.QueryRowContext(ctx, getAuthorization, id), scanAuthorization)
}

const listAuthorizations = `-- name: ListAuthorizations :many
SELECT ` + authorizationColumns + ` FROM authorizations WHERE contact_id = ? ORDER BY start_date DESC, id`

func (q *Queries) ListAuthorizations(ctx context.Context, contactID int64) ([]core.Authorization, error) {
	return queryAll(ctx, q.db, listAuthorizations, scanAuthorization, contactID)
}

const updateAuthorization = `-- name: UpdateAuthorization :exec
UPDATE authorizations SET service_area_id = ?, outside_agency_id = ?, authorization_number = ?,
    authorization_type = ?, start_date = ?, end_date = ?, total_time = ?, billing_rate = ?,
    notes = ?, active = ?
WHERE id = ?`

func (q *Queries) UpdateAuthorization(ctx context.Context, a core.Authorization) error {
	return execAffected(ctx, q.db, updateAuthorization,
		a.ServiceAreaID, a.OutsideAgencyID, a.AuthorizationNumber, string(a.AuthorizationType),
		a.StartDate, a.EndDate, a.TotalTime, a.BillingRate, a.Notes, a.Active, a.ID)
}

const deleteAuthorization = `-- name: DeleteAuthorization :exec
DELETE FROM authorizations WHERE id = ?`

func (q *Queries) DeleteAuthorization(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteAuthorization, id)
}

const lessonNoteColumns = `id, authorization_id, date, attendance, instructional_units, billed_units,
    students_no, note`

func scanLessonNote(s scanner) (core.LessonNote, error) {
	var n core.LessonNote
	err := s.Scan(&n.ID, &n.AuthorizationID, &n.Date, &n.Attendance, &n.InstructionalUnits,
		&n.BilledUnits, &n.StudentsNo, &n.Note)
	return n, err
}

const createLessonNote = `-- name: CreateLessonNote :one
INSERT INTO lesson_notes (authorization_id, date, attendance, instructional_units, billed_units,
    students_no, note)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateLessonNote(ctx context.Context, n core.LessonNote) (int64, error) {
	return insertID(ctx, q.db, createLessonNote,
		n.AuthorizationID, n.Date, n.Attendance, n.InstructionalUnits, n.BilledUnits,
		n.StudentsNo, n.Note)
}

const getLessonNote = `-- name: GetLessonNote :one
SELECT ` + lessonNoteColumns + ` FROM lesson_notes WHERE id = ?`

func (q *Queries) GetLessonNote(ctx context.Context, id int64) (core.LessonNote, error) {
	return one(q.db.QueryRowContext(ctx, getLessonNote, id), scanLessonNote)
}

const listLessonNotes = `-- name: ListLessonNotes :many
SELECT ` + lessonNoteColumns + ` FROM lesson_notes WHERE authorization_id = ? ORDER BY date, id`

func (q *Queries) ListLessonNotes(ctx context.Context, authorizationID int64) ([]core.LessonNote, error) {
	return queryAll(ctx, q.db, listLessonNotes, scanLessonNote, authorizationID)
}

const updateLessonNote = `-- name: UpdateLessonNote :exec
UPDATE lesson_notes SET date = ?, attendance = ?, instructional_units = ?, billed_units = ?,
    students_no = ?, note = ?
WHERE id = ?`

func (q *Queries) UpdateLessonNote(ctx context.Context, n core.LessonNote) error {
	return execAffected(ctx, q.db, updateLessonNote,
		n.Date, n.Attendance, n.InstructionalUnits, n.BilledUnits, n.StudentsNo, n.Note, n.ID)
}

const deleteLessonNote = `-- name: DeleteLessonNote :exec
DELETE FROM lesson_notes WHERE id = ?`

func (q *Queries) DeleteLessonNote(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteLessonNote, id)
}

const progressReportColumns = `id, authorization_id, month, year, instructor, accomplishments,
    short_term_goals, long_term_goals, client_behavior, notes`

func scanProgressReport(s scanner) (core.ProgressReport, error) {
	var p core.ProgressReport
	err := s.Scan(&p.ID, &p.AuthorizationID, &p.Month, &p.Year, &p.Instructor, &p.Accomplishments,
		&p.ShortTermGoals, &p.LongTermGoals, &p.ClientBehavior, &p.Notes)
	return p, err
}

const createProgressReport = `-- name: CreateProgressReport :one
INSERT INTO progress_reports (authorization_id, month, year, instructor, accomplishments,
    short_term_goals, long_term_goals, client_behavior, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateProgressReport(ctx context.Context, p core.ProgressReport) (int64, error) {
	return insertID(ctx, q.db, createProgressReport,
		p.AuthorizationID, p.Month, p.Year, p.Instructor, p.Accomplishments, p.ShortTermGoals,
		p.LongTermGoals, p.ClientBehavior, p.Notes)
}

const listProgressReports = `-- name: ListProgressReports :many
SELECT ` + progressReportColumns + ` FROM progress_reports WHERE authorization_id = ? ORDER BY year, month, id`

func (q *Queries) ListProgressReports(ctx context.Context, authorizationID int64) ([]core.ProgressReport, error) {
	return queryAll(ctx, q.db, listProgressReports, scanProgressReport, authorizationID)
}

const listProgressReportsByMonth = `-- name: ListProgressReportsByMonth :many
SELECT pr.id, pr.authorization_id, pr.month, pr.year, pr.instructor, pr.accomplishments,
    pr.short_term_goals, pr.long_term_goals, pr.client_behavior, pr.notes
FROM progress_reports pr
JOIN authorizations a ON a.id = pr.authorization_id
JOIN contacts c ON c.id = a.contact_id
LEFT JOIN service_areas sa ON sa.id = a.service_area_id
WHERE pr.month = ? AND pr.year = ?
ORDER BY c.last_name, sa.agency, pr.id`

func (q *Queries) ListProgressReportsByMonth(ctx context.Context, month, year int) ([]core.ProgressReport, error) {
	return queryAll(ctx, q.db, listProgressReportsByMonth, scanProgressReport, month, year)
}

const updateProgressReport = `-- name: UpdateProgressReport :exec
UPDATE progress_reports SET month = ?, year = ?, instructor = ?, accomplishments = ?,
    short_term_goals = ?, long_term_goals = ?, client_behavior = ?, notes = ?
WHERE id = ?`

func (q *Queries) UpdateProgressReport(ctx context.Context, p core.ProgressReport) error {
	return execAffected(ctx, q.db, updateProgressReport,
		p.Month, p.Year, p.Instructor, p.Accomplishments, p.ShortTermGoals, p.LongTermGoals,
		p.ClientBehavior, p.Notes, p.ID)
}

const deleteProgressReport = `-- name: DeleteProgressReport :exec
DELETE FROM progress_reports WHERE id = ?`

func (q *Queries) DeleteProgressReport(ctx context.Context, id int64) error {
	return execAffected(ctx, q.db, deleteProgressReport, id)
}
