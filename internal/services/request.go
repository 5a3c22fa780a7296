package services

import (
	"fmt"

	"lynx/internal/amqp"
	"lynx/internal/cache"
	"lynx/internal/core"
	"lynx/internal/report"
)

// ReportRequest names a report and the parameters its kind needs. Unused
// parameters are ignored.
type ReportRequest struct {
	Kind            report.Kind
	Month           int
	Year            int
	Quarter         int
	Query           string
	AuthorizationID int64
}

func (r ReportRequest) Validate() error {
	switch r.Kind {
	case report.KindBilling, report.KindSipDemographics:
		return validMonth(r.Month, r.Year)
	case report.KindBillingReview:
		if r.AuthorizationID <= 0 {
			return core.ErrMissingAuthorization
		}
		return validMonth(r.Month, r.Year)
	case report.KindSipQuarterlyServices, report.KindSipQuarterlyDemographics:
		if r.Quarter < 1 || r.Quarter > 4 {
			return fmt.Errorf("%w: %d", core.ErrInvalidQuarter, r.Quarter)
		}
		return validYear(r.Year)
	case report.KindContacts:
		return nil
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidReport, r.Kind)
	}
}

func validMonth(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	return validYear(year)
}

func validYear(year int) error {
	if year < 1900 || year > 9999 {
		return fmt.Errorf("%w: %d", core.ErrInvalidYear, year)
	}
	return nil
}

// cacheKey only includes the parameters the kind reads, so requests that
// differ in ignored fields share an entry.
func (r ReportRequest) cacheKey() string {
	switch r.Kind {
	case report.KindBilling, report.KindSipDemographics:
		return cache.Key(string(r.Kind), r.Month, r.Year)
	case report.KindBillingReview:
		return cache.Key(string(r.Kind), r.AuthorizationID, r.Month, r.Year)
	case report.KindSipQuarterlyServices, report.KindSipQuarterlyDemographics:
		return cache.Key(string(r.Kind), r.Quarter, r.Year)
	default:
		return cache.Key(string(r.Kind), r.Query)
	}
}

// Params converts the request into the export job payload.
func (r ReportRequest) Params() amqp.ExportParams {
	return amqp.ExportParams{
		Month:           r.Month,
		Year:            r.Year,
		Quarter:         r.Quarter,
		Query:           r.Query,
		AuthorizationID: r.AuthorizationID,
	}
}

// RequestFromJob rebuilds a request from an export job.
func RequestFromJob(msg *amqp.ExportJobMessage) (ReportRequest, error) {
	kind, err := report.ParseKind(msg.Kind)
	if err != nil {
		return ReportRequest{}, err
	}
	req := ReportRequest{
		Kind:            kind,
		Month:           msg.Params.Month,
		Year:            msg.Params.Year,
		Quarter:         msg.Params.Quarter,
		Query:           msg.Params.Query,
		AuthorizationID: msg.Params.AuthorizationID,
	}
	return req, req.Validate()
}
