package report

import (
	"strconv"

	"github.com/shopspring/decimal"

	"lynx/internal/core"
)

// BillingRow is one lesson note joined with its authorization, as read for
// the monthly billing export.
type BillingRow struct {
	AuthorizationID     int64
	AuthorizationNumber string
	AuthorizationType   core.AuthorizationType
	ClientName          string
	ServiceArea         string
	OutsideAgency       string
	BillingRate         decimal.NullDecimal
	BilledUnits         *float64
}

// AuthorizationSummary is the billing total of one authorization.
type AuthorizationSummary struct {
	AuthorizationID     int64
	AuthorizationNumber string
	AuthorizationType   core.AuthorizationType
	ClientName          string
	ServiceArea         string
	OutsideAgency       string
	Rate                decimal.Decimal
	BilledTime          decimal.Decimal
	Amount              decimal.Decimal
}

func (s *AuthorizationSummary) add(units *float64) {
	switch s.AuthorizationType {
	case core.Hours:
		if units == nil {
			return
		}
		s.BilledTime = s.BilledTime.Add(decimal.NewFromFloat(*units).Div(decimal.NewFromInt(4)))
		s.Amount = s.Rate.Mul(s.BilledTime)
	case core.Classes:
		if units == nil || *units == 0 {
			return
		}
		s.BilledTime = s.BilledTime.Add(decimal.NewFromInt(1))
		s.Amount = s.Amount.Add(s.Rate)
	}
}

// AggregateBilling folds note rows into one summary per authorization, in
// the order each authorization first appears.
func AggregateBilling(rows []BillingRow) []AuthorizationSummary {
	acc := newOrdered[int64, AuthorizationSummary]()
	for _, r := range rows {
		acc.upsert(r.AuthorizationID, func() AuthorizationSummary {
			rate := decimal.Zero
			if r.BillingRate.Valid {
				rate = r.BillingRate.Decimal
			}
			return AuthorizationSummary{
				AuthorizationID:     r.AuthorizationID,
				AuthorizationNumber: r.AuthorizationNumber,
				AuthorizationType:   r.AuthorizationType,
				ClientName:          r.ClientName,
				ServiceArea:         r.ServiceArea,
				OutsideAgency:       r.OutsideAgency,
				Rate:                rate,
			}
		}, func(s *AuthorizationSummary) {
			s.add(r.BilledUnits)
		})
	}

	out := make([]AuthorizationSummary, 0, acc.len())
	acc.each(func(_ int64, s *AuthorizationSummary) {
		out = append(out, *s)
	})
	return out
}

var billingHeader = []string{
	"Client", "Service Area", "Authorization", "Authorization Type",
	"Billed Time", "Billing Rate", "Amount", "Payment Source",
}

// BillingReport builds the monthly billing export with a trailing totals row.
// The hours total sums each authorization's whole units.
func BillingReport(rows []BillingRow, month, year int) Document {
	doc := Document{
		Name:   "Core Lynx Excel Billing",
		Period: strconv.Itoa(month) + " - " + strconv.Itoa(year),
		Header: billingHeader,
	}

	totalTime := int64(0)
	totalAmount := decimal.Zero
	for _, s := range AggregateBilling(rows) {
		totalTime += s.BilledTime.IntPart()
		totalAmount = totalAmount.Add(s.Amount)
		doc.Rows = append(doc.Rows, []string{
			s.ClientName,
			s.ServiceArea,
			s.AuthorizationNumber,
			string(s.AuthorizationType),
			billedTime(s.BilledTime),
			s.Rate.StringFixed(2),
			s.Amount.StringFixed(2),
			s.OutsideAgency,
		})
	}
	doc.Rows = append(doc.Rows, []string{
		"", "", "", "", strconv.FormatInt(totalTime, 10), "", core.FormatDollars(totalAmount), "",
	})
	return doc
}

func billedTime(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
