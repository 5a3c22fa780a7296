package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"lynx/internal/report"
)

// ReportRules is the on-disk shape of REPORT_RULES_FILE.
//
//	excluded_client_ids: [12, 40]
//	referral_other: [DOR, Alta, Physician]
type ReportRules struct {
	ExcludedClientIDs []int64  `yaml:"excluded_client_ids"`
	ReferralOther     []string `yaml:"referral_other"`
}

// LoadReportRules reads the rules file at path. An empty path yields the
// defaults. A missing referral_other key keeps the default list.
func LoadReportRules(path string) (report.Rules, error) {
	rules := report.DefaultRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read report rules: %w", err)
	}
	return ParseReportRules(data)
}

// ParseReportRules decodes a YAML rules document over the defaults.
func ParseReportRules(data []byte) (report.Rules, error) {
	defaults := report.DefaultRules()
	var raw ReportRules
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return defaults, fmt.Errorf("parse report rules: %w", err)
	}

	var problems []string
	for _, id := range raw.ExcludedClientIDs {
		if id <= 0 {
			problems = append(problems, fmt.Sprintf("excluded client id %d must be positive", id))
		}
	}
	for i, s := range raw.ReferralOther {
		raw.ReferralOther[i] = strings.TrimSpace(s)
		if raw.ReferralOther[i] == "" {
			problems = append(problems, fmt.Sprintf("referral_other entry %d is blank", i))
		}
	}
	if len(problems) > 0 {
		return defaults, fmt.Errorf("report rules validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	if raw.ReferralOther == nil {
		raw.ReferralOther = defaults.ReferralOther
	}
	return report.Rules(raw), nil
}
