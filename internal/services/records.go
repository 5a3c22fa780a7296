package services

import (
	"context"
	"fmt"

	"lynx/internal/core"
	"lynx/internal/log"
	"lynx/internal/metrics"
	"lynx/internal/report"
	"lynx/internal/storage"
)

// Invalidator drops derived data after a write.
type Invalidator interface {
	Invalidate()
}

// RecordService validates writes before they reach storage and invalidates
// cached reports after every successful write.
type RecordService struct {
	repo        *storage.SQLiteRepository
	invalidator Invalidator
	logger      *log.Logger
}

func NewRecordService(repo *storage.SQLiteRepository, invalidator Invalidator, logger *log.Logger) *RecordService {
	return &RecordService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentRecords),
	}
}

type validator interface {
	Validate() error
}

func (s *RecordService) written(ctx context.Context, record, op string, id int64) {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
	metrics.IncRecordWrite(record, op)
	s.logger.DebugContext(ctx, "Record written", "record", record, log.FieldOperation, op, "id", id)
}

func create[T validator](ctx context.Context, s *RecordService, record string, v T, insert func(context.Context, T) (int64, error)) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	id, err := insert(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", record, err)
	}
	s.written(ctx, record, log.OpCreate, id)
	return id, nil
}

func update[T validator](ctx context.Context, s *RecordService, record string, id int64, v T, save func(context.Context, T) error) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := save(ctx, v); err != nil {
		return fmt.Errorf("update %s %d: %w", record, id, err)
	}
	s.written(ctx, record, log.OpUpdate, id)
	return nil
}

func (s *RecordService) remove(ctx context.Context, record string, id int64, del func(context.Context, int64) error) error {
	if err := del(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", record, id, err)
	}
	s.written(ctx, record, log.OpDelete, id)
	return nil
}

// Contacts

func (s *RecordService) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	if err := c.Validate(); err != nil {
		return core.Contact{}, err
	}
	created, err := s.repo.CreateContact(ctx, c)
	if err != nil {
		return core.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	s.written(ctx, "contact", log.OpCreate, created.ID)
	return created, nil
}

func (s *RecordService) GetContact(ctx context.Context, id int64) (core.Contact, error) {
	return s.repo.GetContact(ctx, id)
}

func (s *RecordService) ListContacts(ctx context.Context, limit, offset int) ([]core.Contact, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListContacts(ctx, limit, offset)
}

// SearchContacts matches q against names, zip, county, phone and email.
func (s *RecordService) SearchContacts(ctx context.Context, q string) ([]report.ContactRow, error) {
	return s.repo.SearchContacts(ctx, q)
}

func (s *RecordService) UpdateContact(ctx context.Context, c core.Contact) error {
	return update(ctx, s, "contact", c.ID, c, s.repo.UpdateContact)
}

func (s *RecordService) DeleteContact(ctx context.Context, id int64) error {
	return s.remove(ctx, "contact", id, s.repo.DeleteContact)
}

// ContactDetails is a contact with every record hanging off it.
type ContactDetails struct {
	core.Contact
	Addresses         []core.Address          `json:"addresses"`
	Phones            []core.Phone            `json:"phones"`
	Emails            []core.Email            `json:"emails"`
	EmergencyContacts []core.EmergencyContact `json:"emergency_contacts"`
	IntakeNotes       []core.IntakeNote       `json:"intake_notes"`
	Authorizations    []core.Authorization    `json:"authorizations"`
	SipPlans          []core.SipPlan          `json:"sip_plans"`
	SipNotes          []core.SipNote          `json:"sip_notes"`
}

func (s *RecordService) GetContactDetails(ctx context.Context, id int64) (ContactDetails, error) {
	c, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return ContactDetails{}, err
	}
	d := ContactDetails{Contact: c}
	steps := []func() error{
		func() (err error) { d.Addresses, err = s.repo.ListAddresses(ctx, id); return },
		func() (err error) { d.Phones, err = s.repo.ListPhones(ctx, id); return },
		func() (err error) { d.Emails, err = s.repo.ListEmails(ctx, id); return },
		func() (err error) { d.EmergencyContacts, err = s.repo.ListEmergencyContacts(ctx, id); return },
		func() (err error) { d.IntakeNotes, err = s.repo.ListIntakeNotes(ctx, id); return },
		func() (err error) { d.Authorizations, err = s.repo.ListAuthorizations(ctx, id); return },
		func() (err error) { d.SipPlans, err = s.repo.ListSipPlans(ctx, id); return },
		func() (err error) { d.SipNotes, err = s.repo.ListSipNotes(ctx, id); return },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return ContactDetails{}, fmt.Errorf("load contact %d: %w", id, err)
		}
	}
	return d, nil
}

func (s *RecordService) AddAddress(ctx context.Context, a core.Address) (int64, error) {
	return create(ctx, s, "address", a, s.repo.CreateAddress)
}

func (s *RecordService) AddPhone(ctx context.Context, p core.Phone) (int64, error) {
	return create(ctx, s, "phone", p, s.repo.CreatePhone)
}

func (s *RecordService) AddEmail(ctx context.Context, e core.Email) (int64, error) {
	return create(ctx, s, "email", e, s.repo.CreateEmail)
}

func (s *RecordService) AddEmergencyContact(ctx context.Context, e core.EmergencyContact) (int64, error) {
	return create(ctx, s, "emergency_contact", e, s.repo.CreateEmergencyContact)
}

func (s *RecordService) AddIntakeNote(ctx context.Context, n core.IntakeNote) (int64, error) {
	return create(ctx, s, "intake_note", n, s.repo.CreateIntakeNote)
}

func (s *RecordService) GetIntake(ctx context.Context, contactID int64) (core.Intake, error) {
	return s.repo.GetIntake(ctx, contactID)
}

// SaveIntake creates or replaces the contact's single intake record.
func (s *RecordService) SaveIntake(ctx context.Context, in core.Intake) (int64, error) {
	return create(ctx, s, "intake", in, s.repo.UpsertIntake)
}

func (s *RecordService) AddVolunteer(ctx context.Context, v core.Volunteer) (int64, error) {
	return create(ctx, s, "volunteer", v, s.repo.AddVolunteer)
}

// Agencies

func (s *RecordService) CreateServiceArea(ctx context.Context, a core.ServiceArea) (int64, error) {
	return create(ctx, s, "service_area", a, s.repo.CreateServiceArea)
}

func (s *RecordService) ListServiceAreas(ctx context.Context) ([]core.ServiceArea, error) {
	return s.repo.ListServiceAreas(ctx)
}

func (s *RecordService) CreateOutsideAgency(ctx context.Context, o core.OutsideAgency) (int64, error) {
	return create(ctx, s, "outside_agency", o, s.repo.CreateOutsideAgency)
}

func (s *RecordService) ListOutsideAgencies(ctx context.Context) ([]core.OutsideAgency, error) {
	return s.repo.ListOutsideAgencies(ctx)
}

// SIP plans and notes

func (s *RecordService) CreateSipPlan(ctx context.Context, p core.SipPlan) (int64, error) {
	return create(ctx, s, "sip_plan", p, s.repo.CreateSipPlan)
}

func (s *RecordService) GetSipPlan(ctx context.Context, id int64) (core.SipPlan, error) {
	return s.repo.GetSipPlan(ctx, id)
}

func (s *RecordService) UpdateSipPlan(ctx context.Context, p core.SipPlan) error {
	return update(ctx, s, "sip_plan", p.ID, p, s.repo.UpdateSipPlan)
}

func (s *RecordService) DeleteSipPlan(ctx context.Context, id int64) error {
	return s.remove(ctx, "sip_plan", id, s.repo.DeleteSipPlan)
}

// CreateSipNote stamps the note's fiscal period from its date before saving.
func (s *RecordService) CreateSipNote(ctx context.Context, n core.SipNote) (core.SipNote, error) {
	n.Stamp()
	id, err := create(ctx, s, "sip_note", n, s.repo.CreateSipNote)
	if err != nil {
		return core.SipNote{}, err
	}
	n.ID = id
	return n, nil
}

func (s *RecordService) UpdateSipNote(ctx context.Context, n core.SipNote) (core.SipNote, error) {
	n.Stamp()
	if err := update(ctx, s, "sip_note", n.ID, n, s.repo.UpdateSipNote); err != nil {
		return core.SipNote{}, err
	}
	return n, nil
}

func (s *RecordService) DeleteSipNote(ctx context.Context, id int64) error {
	return s.remove(ctx, "sip_note", id, s.repo.DeleteSipNote)
}

// BulkSipNote records the same session for many contacts, e.g. a group class.
type BulkSipNote struct {
	ContactIDs []int64      `json:"contact_ids"`
	Note       core.SipNote `json:"note"`
}

// CreateSipNotes saves one stamped copy of the template note per contact,
// all or nothing. Plans are per contact so the template's plan is dropped.
func (s *RecordService) CreateSipNotes(ctx context.Context, bulk BulkSipNote) ([]int64, error) {
	if len(bulk.ContactIDs) == 0 {
		return nil, core.ErrMissingContact
	}
	notes := make([]core.SipNote, 0, len(bulk.ContactIDs))
	for _, id := range bulk.ContactIDs {
		n := bulk.Note
		n.ID = 0
		n.ContactID = id
		n.SipPlanID = nil
		n.Stamp()
		if err := n.Validate(); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	ids, err := s.repo.CreateSipNotes(ctx, notes)
	if err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
	metrics.IncRecordWrite("sip_note", "bulk_create")
	s.logger.InfoContext(ctx, "Bulk SIP notes saved", "count", len(ids))
	return ids, nil
}

// Authorizations, lesson notes and progress reports

func (s *RecordService) CreateAuthorization(ctx context.Context, a core.Authorization) (int64, error) {
	return create(ctx, s, "authorization", a, s.repo.CreateAuthorization)
}

func (s *RecordService) GetAuthorization(ctx context.Context, id int64) (core.Authorization, error) {
	return s.repo.GetAuthorization(ctx, id)
}

func (s *RecordService) UpdateAuthorization(ctx context.Context, a core.Authorization) error {
	return update(ctx, s, "authorization", a.ID, a, s.repo.UpdateAuthorization)
}

func (s *RecordService) DeleteAuthorization(ctx context.Context, id int64) error {
	return s.remove(ctx, "authorization", id, s.repo.DeleteAuthorization)
}

func (s *RecordService) CreateLessonNote(ctx context.Context, n core.LessonNote) (int64, error) {
	return create(ctx, s, "lesson_note", n, s.repo.CreateLessonNote)
}

func (s *RecordService) UpdateLessonNote(ctx context.Context, n core.LessonNote) error {
	return update(ctx, s, "lesson_note", n.ID, n, s.repo.UpdateLessonNote)
}

func (s *RecordService) DeleteLessonNote(ctx context.Context, id int64) error {
	return s.remove(ctx, "lesson_note", id, s.repo.DeleteLessonNote)
}

func (s *RecordService) CreateProgressReport(ctx context.Context, p core.ProgressReport) (int64, error) {
	return create(ctx, s, "progress_report", p, s.repo.CreateProgressReport)
}

func (s *RecordService) UpdateProgressReport(ctx context.Context, p core.ProgressReport) error {
	return update(ctx, s, "progress_report", p.ID, p, s.repo.UpdateProgressReport)
}

func (s *RecordService) DeleteProgressReport(ctx context.Context, id int64) error {
	return s.remove(ctx, "progress_report", id, s.repo.DeleteProgressReport)
}

// ProgressReportsForMonth lists every progress report filed for month/year.
func (s *RecordService) ProgressReportsForMonth(ctx context.Context, month, year int) ([]core.ProgressReport, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	if year < 1900 {
		return nil, core.ErrInvalidYear
	}
	return s.repo.ListProgressReportsByMonth(ctx, month, year)
}
