package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Hours   AuthorizationType = "Hours"
	Classes AuthorizationType = "Classes"
)

const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
	AttendanceOther   = "Other"
)

const dateLayout = "2006-01-02"

type (
	AuthorizationType string

	Date struct {
		time.Time
	}

	Contact struct {
		ID            int64  `json:"id"`
		FirstName     string `json:"first_name"`
		MiddleName    string `json:"middle_name,omitempty"`
		LastName      string `json:"last_name"`
		Company       string `json:"company,omitempty"`
		Active        bool   `json:"active"`
		DoNotContact  bool   `json:"do_not_contact"`
		Deceased      bool   `json:"deceased"`
		RemoveMailing bool   `json:"remove_mailing"`
		SipClient     bool   `json:"sip_client"`
		CoreClient    bool   `json:"core_client"`
		Volunteer     bool   `json:"volunteer"`
		Notes         string `json:"notes,omitempty"`
	}

	Address struct {
		ID         int64  `json:"id"`
		ContactID  int64  `json:"contact_id"`
		AddressOne string `json:"address_one"`
		AddressTwo string `json:"address_two,omitempty"`
		Suite      string `json:"suite,omitempty"`
		City       string `json:"city"`
		State      string `json:"state"`
		ZipCode    string `json:"zip_code"`
		County     string `json:"county"`
		Country    string `json:"country,omitempty"`
		Region     string `json:"region,omitempty"`
		BadAddress bool   `json:"bad_address"`
	}

	Phone struct {
		ID        int64  `json:"id"`
		ContactID int64  `json:"contact_id"`
		Phone     string `json:"phone"`
		PhoneType string `json:"phone_type,omitempty"`
		Active    bool   `json:"active"`
	}

	Email struct {
		ID        int64  `json:"id"`
		ContactID int64  `json:"contact_id"`
		Email     string `json:"email"`
		EmailType string `json:"email_type,omitempty"`
		Active    bool   `json:"active"`
	}

	EmergencyContact struct {
		ID        int64  `json:"id"`
		ContactID int64  `json:"contact_id"`
		Name      string `json:"name"`
		Phone     string `json:"phone,omitempty"`
		Email     string `json:"email,omitempty"`
		Notes     string `json:"notes,omitempty"`
	}

	// Impairments are the intake health flags reported on SIP demographics.
	Impairments struct {
		Dialysis           bool `json:"dialysis"`
		Stroke             bool `json:"stroke"`
		Seizure            bool `json:"seizure"`
		Heart              bool `json:"heart"`
		Arthritis          bool `json:"arthritis"`
		HighBP             bool `json:"high_bp"`
		HearingLoss        bool `json:"hearing_loss"`
		Neuropathy         bool `json:"neuropathy"`
		Pain               bool `json:"pain"`
		Asthma             bool `json:"asthma"`
		Cancer             bool `json:"cancer"`
		Musculoskeletal    bool `json:"musculoskeletal"`
		Alzheimers         bool `json:"alzheimers"`
		Allergies          bool `json:"allergies"`
		MentalHealth       bool `json:"mental_health"`
		SubstanceAbuse     bool `json:"substance_abuse"`
		MemoryLoss         bool `json:"memory_loss"`
		LearningDisability bool `json:"learning_disability"`
		Geriatric          bool `json:"geriatric"`
		Dexterity          bool `json:"dexterity"`
		Migraine           bool `json:"migraine"`
		Communication      bool `json:"communication"`
	}

	Intake struct {
		ID                int64  `json:"id"`
		ContactID         int64  `json:"contact_id"`
		IntakeDate        Date   `json:"intake_date"`
		AgeGroup          string `json:"age_group"`
		Gender            string `json:"gender"`
		BirthDate         Date   `json:"birth_date"`
		Ethnicity         string `json:"ethnicity"`
		OtherEthnicity    string `json:"other_ethnicity,omitempty"`
		Education         string `json:"education"`
		LivingArrangement string `json:"living_arrangement"`
		ResidenceType     string `json:"residence_type"`
		EyeCondition      string `json:"eye_condition"`
		EyeConditionDate  string `json:"eye_condition_date"`
		Degree            string `json:"degree"`
		ReferredBy        string `json:"referred_by"`
		PaymentSource     string `json:"payment_source,omitempty"`
		Impairments
	}

	IntakeNote struct {
		ID        int64  `json:"id"`
		ContactID int64  `json:"contact_id"`
		Note      string `json:"note"`
		Created   Date   `json:"created"`
	}

	ServiceArea struct {
		ID     int64  `json:"id"`
		Agency string `json:"agency"`
	}

	OutsideAgency struct {
		ID          int64  `json:"id"`
		Agency      string `json:"agency"`
		ContactName string `json:"contact_name"`
		ContactID   *int64 `json:"contact_id,omitempty"`
	}

	Authorization struct {
		ID                  int64               `json:"id"`
		ContactID           int64               `json:"contact_id"`
		ServiceAreaID       *int64              `json:"service_area_id,omitempty"`
		OutsideAgencyID     *int64              `json:"outside_agency_id,omitempty"`
		AuthorizationNumber string              `json:"authorization_number"`
		AuthorizationType   AuthorizationType   `json:"authorization_type"`
		StartDate           Date                `json:"start_date"`
		EndDate             Date                `json:"end_date"`
		TotalTime           decimal.NullDecimal `json:"total_time"`
		BillingRate         decimal.NullDecimal `json:"billing_rate"`
		Notes               string              `json:"notes,omitempty"`
		Active              bool                `json:"active"`
	}

	LessonNote struct {
		ID                 int64    `json:"id"`
		AuthorizationID    int64    `json:"authorization_id"`
		Date               Date     `json:"date"`
		Attendance         string   `json:"attendance"`
		InstructionalUnits *float64 `json:"instructional_units"`
		BilledUnits        *float64 `json:"billed_units"`
		StudentsNo         int      `json:"students_no"`
		Note               string   `json:"note,omitempty"`
	}

	ProgressReport struct {
		ID              int64  `json:"id"`
		AuthorizationID int64  `json:"authorization_id"`
		Month           int    `json:"month"`
		Year            int    `json:"year"`
		Instructor      string `json:"instructor"`
		Accomplishments string `json:"accomplishments,omitempty"`
		ShortTermGoals  string `json:"short_term_goals,omitempty"`
		LongTermGoals   string `json:"long_term_goals,omitempty"`
		ClientBehavior  string `json:"client_behavior,omitempty"`
		Notes           string `json:"notes,omitempty"`
	}

	SipPlan struct {
		ID                    int64  `json:"id"`
		ContactID             int64  `json:"contact_id"`
		PlanName              string `json:"plan_name"`
		Note                  string `json:"note,omitempty"`
		LivingPlanProgress    string `json:"living_plan_progress"`
		CommunityPlanProgress string `json:"community_plan_progress"`
		AtOutcomes            string `json:"at_outcomes"`
		IlaOutcomes           string `json:"ila_outcomes"`
	}

	// SipServices are the per-note service flags folded into quarterly outcomes.
	SipServices struct {
		IndependentLiving bool `json:"independent_living"`
		VisionScreening   bool `json:"vision_screening"`
		Treatment         bool `json:"treatment"`
		AtDevices         bool `json:"at_devices"`
		AtServices        bool `json:"at_services"`
		Orientation       bool `json:"orientation"`
		Communications    bool `json:"communications"`
		Dls               bool `json:"dls"`
		Support           bool `json:"support"`
		Advocacy          bool `json:"advocacy"`
		Counseling        bool `json:"counseling"`
		Information       bool `json:"information"`
		Services          bool `json:"services"`
	}

	SipNote struct {
		ID         int64    `json:"id"`
		ContactID  int64    `json:"contact_id"`
		SipPlanID  *int64   `json:"sip_plan_id,omitempty"`
		NoteDate   Date     `json:"note_date"`
		Quarter    int      `json:"quarter"`
		FiscalYear string   `json:"fiscal_year"`
		ClassHours *float64 `json:"class_hours,omitempty"`
		Instructor string   `json:"instructor,omitempty"`
		Note       string   `json:"note,omitempty"`
		SipServices
	}

	Volunteer struct {
		ID           int64  `json:"id"`
		ContactID    int64  `json:"contact_id"`
		Skills       string `json:"skills,omitempty"`
		Availability string `json:"availability,omitempty"`
		Notes        string `json:"notes,omitempty"`
	}
)

var (
	ErrNotFound                 = errors.New("not found")
	ErrEmptyName                = errors.New("empty name")
	ErrMissingContact           = errors.New("missing contact")
	ErrMissingAuthorization     = errors.New("missing authorization")
	ErrInvalidAuthorizationType = errors.New("invalid authorization type")
	ErrNegativeUnits            = errors.New("units cannot be negative")
	ErrNegativeRate             = errors.New("billing rate cannot be negative")
	ErrInvalidMonth             = errors.New("invalid month")
	ErrInvalidQuarter           = errors.New("invalid quarter")
	ErrInvalidYear              = errors.New("invalid year")
	ErrInvalidDate              = errors.New("invalid date")
	ErrEmptyValue               = errors.New("empty value")
	ErrEndBeforeStart           = errors.New("end date before start date")
	ErrEmptyAuthorizationNumber = errors.New("empty authorization number")
	ErrInvalidFormat            = errors.New("invalid export format")
	ErrInvalidReport            = errors.New("invalid report kind")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Slash renders the date as M/D/YYYY.
func (d Date) Slash() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", int(d.Month()), d.Day(), d.Year())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan reads a date stored as YYYY-MM-DD text. NULL and "" yield the zero Date.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case []byte:
		return d.Scan(string(v))
	case string:
		if len(v) > len(dateLayout) {
			v = v[:len(dateLayout)]
		}
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDate, src)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (t AuthorizationType) IsValid() bool {
	switch t {
	case Hours, Classes:
		return true
	default:
		return false
	}
}

// FullName joins first and last name the way reports print clients.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" && strings.TrimSpace(c.Company) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Address) Validate() error {
	if a.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(a.AddressOne) == "" {
		return fmt.Errorf("%w: address_one", ErrEmptyValue)
	}
	return nil
}

func (p Phone) Validate() error {
	if p.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("%w: phone", ErrEmptyValue)
	}
	return nil
}

func (e Email) Validate() error {
	if e.ContactID == 0 {
		return ErrMissingContact
	}
	if !strings.Contains(e.Email, "@") {
		return fmt.Errorf("%w: email", ErrEmptyValue)
	}
	return nil
}

func (e EmergencyContact) Validate() error {
	if e.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i Intake) Validate() error {
	if i.ContactID == 0 {
		return ErrMissingContact
	}
	return nil
}

func (n IntakeNote) Validate() error {
	if n.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(n.Note) == "" {
		return fmt.Errorf("%w: note", ErrEmptyValue)
	}
	return nil
}

func (s ServiceArea) Validate() error {
	if strings.TrimSpace(s.Agency) == "" {
		return ErrEmptyName
	}
	return nil
}

func (o OutsideAgency) Validate() error {
	if strings.TrimSpace(o.Agency) == "" {
		return ErrEmptyName
	}
	return nil
}

// PaymentSource is the "contact - agency" label shown on billing documents.
func (o OutsideAgency) PaymentSource() string {
	return o.ContactName + " - " + o.Agency
}

func (a Authorization) Validate() error {
	if a.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(a.AuthorizationNumber) == "" {
		return ErrEmptyAuthorizationNumber
	}
	if !a.AuthorizationType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAuthorizationType, a.AuthorizationType)
	}
	if a.BillingRate.Valid && a.BillingRate.Decimal.IsNegative() {
		return ErrNegativeRate
	}
	if a.TotalTime.Valid && a.TotalTime.Decimal.IsNegative() {
		return ErrNegativeUnits
	}
	if !a.StartDate.IsZero() && !a.EndDate.IsZero() && a.EndDate.Before(a.StartDate.Time) {
		return ErrEndBeforeStart
	}
	return nil
}

func (n LessonNote) Validate() error {
	if n.AuthorizationID == 0 {
		return ErrMissingAuthorization
	}
	if n.Date.IsZero() {
		return ErrInvalidDate
	}
	if n.BilledUnits != nil && *n.BilledUnits < 0 {
		return ErrNegativeUnits
	}
	if n.InstructionalUnits != nil && *n.InstructionalUnits < 0 {
		return ErrNegativeUnits
	}
	return nil
}

// Billed reports whether the note carries a non-null, non-zero billed unit count.
func (n LessonNote) Billed() bool {
	return n.BilledUnits != nil && *n.BilledUnits != 0
}

func (p ProgressReport) Validate() error {
	if p.AuthorizationID == 0 {
		return ErrMissingAuthorization
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1900 {
		return ErrInvalidYear
	}
	return nil
}

// PlanName builds the "M/D/YYYY - type - instructor" label for a SIP plan.
func PlanName(start Date, planType, instructor string) string {
	return start.Slash() + " - " + planType + " - " + instructor
}

func (p SipPlan) Validate() error {
	if p.ContactID == 0 {
		return ErrMissingContact
	}
	if strings.TrimSpace(p.PlanName) == "" {
		return ErrEmptyName
	}
	return nil
}

func (n SipNote) Validate() error {
	if n.ContactID == 0 {
		return ErrMissingContact
	}
	if n.NoteDate.IsZero() {
		return ErrInvalidDate
	}
	if n.ClassHours != nil && *n.ClassHours < 0 {
		return ErrNegativeUnits
	}
	return nil
}

// Stamp derives the note's quarter and fiscal year from its date.
func (n *SipNote) Stamp() {
	p := FiscalPeriodOf(n.NoteDate.Year(), int(n.NoteDate.Month()))
	n.Quarter = p.Quarter
	n.FiscalYear = p.FiscalYear
}

func (v Volunteer) Validate() error {
	if v.ContactID == 0 {
		return ErrMissingContact
	}
	return nil
}

var invalidInput = []error{
	ErrEmptyName, ErrMissingContact, ErrMissingAuthorization, ErrInvalidAuthorizationType,
	ErrNegativeUnits, ErrNegativeRate, ErrInvalidMonth, ErrInvalidQuarter, ErrInvalidYear,
	ErrInvalidDate, ErrEmptyValue, ErrEndBeforeStart, ErrEmptyAuthorizationNumber,
	ErrInvalidFormat, ErrInvalidReport,
}

// IsInvalid reports whether err was caused by bad input rather than by the
// store or a missing record.
func IsInvalid(err error) bool {
	for _, target := range invalidInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
