package report

import "slices"

// Rules are site-specific adjustments applied while building SIP reports.
type Rules struct {
	// ExcludedClientIDs are never listed on the monthly demographic report.
	ExcludedClientIDs []int64
	// ReferralOther are referral sources reported as "Other" on quarterly
	// demographics.
	ReferralOther []string
}

// DefaultRules returns the rules used when no rules file is configured.
func DefaultRules() Rules {
	return Rules{ReferralOther: []string{"DOR", "Alta", "Physician"}}
}

func (r Rules) excluded(id int64) bool {
	return slices.Contains(r.ExcludedClientIDs, id)
}

func (r Rules) referral(source string) string {
	if source != "" && slices.Contains(r.ReferralOther, source) {
		return "Other"
	}
	return source
}
