package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lynx/internal/core"
)

const (
	MissingRate      = "Need to enter billing rate"
	MissingTotalTime = "Need to enter total time"
)

// Usage summarizes how much of an authorization has been used.
type Usage struct {
	AuthorizationID int64  `json:"authorization_id"`
	Rate            string `json:"rate"`
	TotalUsed       string `json:"total_used"`
	TotalBilled     string `json:"total_billed"`
	Remaining       string `json:"remaining"`
	MonthUsed       string `json:"month_used"`
	TotalTime       string `json:"total_time"`
	TotalNotes      int    `json:"total_notes"`
	TotalPresent    int    `json:"total_present"`
}

// used returns the time an authorization has consumed across notes: hours
// for Hours, billed sessions for Classes.
func used(t core.AuthorizationType, notes []core.LessonNote) decimal.Decimal {
	units := 0.0
	sessions := int64(0)
	for _, n := range notes {
		if !n.Billed() {
			continue
		}
		units += *n.BilledUnits
		sessions++
	}
	if t == core.Classes {
		return decimal.NewFromInt(sessions)
	}
	return decimal.NewFromFloat(core.UnitsToHours(units))
}

func inMonth(notes []core.LessonNote, month, year int) []core.LessonNote {
	var out []core.LessonNote
	for _, n := range notes {
		if int(n.Date.Month()) == month && n.Date.Year() == year {
			out = append(out, n)
		}
	}
	return out
}

// SummarizeUsage computes the usage of auth from all of its lesson notes,
// with the month figure restricted to month/year.
func SummarizeUsage(auth core.Authorization, notes []core.LessonNote, month, year int) Usage {
	u := Usage{AuthorizationID: auth.ID}
	total := used(auth.AuthorizationType, notes)
	u.TotalUsed = total.String()
	u.MonthUsed = used(auth.AuthorizationType, inMonth(notes, month, year)).String()

	if auth.BillingRate.Valid {
		rate := auth.BillingRate.Decimal
		per := "/hour"
		if auth.AuthorizationType == core.Classes {
			per = "/class"
		}
		u.Rate = "$" + rate.String() + per
		u.TotalBilled = core.FormatDollars(rate.Mul(total).Round(2))
	} else {
		u.Rate = MissingRate
		u.TotalBilled = MissingRate
	}

	if auth.TotalTime.Valid {
		u.TotalTime = auth.TotalTime.Decimal.String()
		u.Remaining = auth.TotalTime.Decimal.Sub(total).String()
	} else {
		u.Remaining = MissingTotalTime
	}

	for _, n := range notes {
		if n.Attendance != core.AttendanceOther {
			u.TotalNotes++
		}
		if n.Attendance == core.AttendancePresent {
			u.TotalPresent++
		}
	}
	return u
}

// BillingReview is the monthly review sheet sent with an authorization's
// invoice.
type BillingReview struct {
	Authorization core.Authorization `json:"authorization"`
	ClientName    string             `json:"client_name"`
	PaymentSource string             `json:"payment_source"`
	Address       string             `json:"address"`
	Phone         string             `json:"phone"`
	Instructors   []string           `json:"instructors"`
	Notes         []core.LessonNote  `json:"notes"`
	Month         int                `json:"month"`
	Year          int                `json:"year"`
}

var reviewHeader = []string{"Date", "Attendance", "Billed Units", "Hours", "Note"}

// Document renders the review as the month's lesson notes followed by the
// authorization totals.
func (b BillingReview) Document() Document {
	a := b.Authorization
	monthNotes := inMonth(b.Notes, b.Month, b.Year)
	doc := Document{
		Name:   "Billing Review " + a.AuthorizationNumber,
		Period: core.MonthName(b.Month) + " - " + strconv.Itoa(b.Year),
		Header: reviewHeader,
	}
	for _, n := range monthNotes {
		units, hours := "", "0"
		if n.BilledUnits != nil {
			units = strconv.FormatFloat(*n.BilledUnits, 'f', -1, 64)
			hours = strconv.FormatFloat(core.UnitsToHours(*n.BilledUnits), 'f', -1, 64)
		}
		doc.Rows = append(doc.Rows, []string{n.Date.Slash(), n.Attendance, units, hours, n.Note})
	}

	totalTime := MissingTotalTime
	if a.TotalTime.Valid {
		totalTime = a.TotalTime.Decimal.String()
	}
	doc.Rows = append(doc.Rows,
		[]string{"Client", b.ClientName},
		[]string{"Payment Source", b.PaymentSource},
		[]string{"Address", b.Address},
		[]string{"Phone", b.Phone},
		[]string{"Instructors", strings.Join(b.Instructors, ", ")},
		[]string{"Used This Month", used(a.AuthorizationType, monthNotes).String()},
		[]string{"Total Time", totalTime},
	)
	return doc
}
