package report

import (
	"fmt"

	"lynx/internal/core"
)

// Kind names a downloadable report. The value doubles as the URL segment.
type Kind string

const (
	KindBilling                  Kind = "billing"
	KindSipDemographics          Kind = "sip-demographics"
	KindSipQuarterlyServices     Kind = "sip-quarterly-services"
	KindSipQuarterlyDemographics Kind = "sip-quarterly-demographics"
	KindContacts                 Kind = "contacts"
	KindBillingReview            Kind = "billing-review"
)

var kinds = []Kind{
	KindBilling,
	KindSipDemographics,
	KindSipQuarterlyServices,
	KindSipQuarterlyDemographics,
	KindContacts,
	KindBillingReview,
}

// Kinds lists every report kind.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown report %q", core.ErrInvalidReport, s)
}
