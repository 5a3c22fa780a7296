package report

import (
	"strconv"

	"lynx/internal/core"
)

// rank orders outcome labels. Zero is "not assessed" or unrecognized.
type rank int

const (
	rankNone rank = iota
	rankDecreased
	rankMaintained
	rankImproved
)

// scale resolves raw outcome values to a label and its rank.
type scale struct {
	inputs  map[string]rank
	labels  map[rank]string
	passRaw bool
}

// resolve maps a raw value to the label it is reported as.
func (s scale) resolve(v string) (string, rank) {
	r := s.inputs[v]
	if s.passRaw {
		return v, r
	}
	return s.labels[r], r
}

// rankOf ranks an already resolved label.
func (s scale) rankOf(label string) rank {
	if s.passRaw {
		return s.inputs[label]
	}
	for r, l := range s.labels {
		if l == label {
			return r
		}
	}
	return rankNone
}

// fold keeps the higher ranked of the previous label and the raw value.
func (s scale) fold(prev, v string) string {
	label, r := s.resolve(v)
	if r > s.rankOf(prev) {
		return label
	}
	return prev
}

// Plan progress answers, recorded on SIP plans.
const (
	PlanMoreConfident = "Plan complete, feeling more confident in ability to maintain living situation"
	PlanNoDifference  = "Plan complete, no difference in ability to maintain living situation"
	PlanLessConfident = "Plan complete, feeling less confident in ability to maintain living situation"
)

// Assessment outcomes, reported as recorded.
const (
	AssessedImproved   = "Assessed, improved independence"
	AssessedMaintained = "Assessed, maintained independence"
	AssessedDecreased  = "Assessed, decreased independence"
)

var planScale = scale{
	inputs: map[string]rank{
		PlanMoreConfident: rankImproved,
		PlanNoDifference:  rankMaintained,
		PlanLessConfident: rankDecreased,
	},
	labels: map[rank]string{
		rankNone:       "Not Assessed",
		rankDecreased:  "Decreased",
		rankMaintained: "Maintained",
		rankImproved:   "Increased",
	},
}

var assessScale = scale{
	inputs: map[string]rank{
		AssessedImproved:   rankImproved,
		AssessedMaintained: rankMaintained,
		AssessedDecreased:  rankDecreased,
	},
	passRaw: true,
}

// OutcomeRow is one SIP note with its plan outcomes, for a client that is
// new in the reported quarter.
type OutcomeRow struct {
	ContactID  int64
	ClientName string
	Quarter    int
	core.SipServices
	LivingPlanProgress    string
	CommunityPlanProgress string
	AtOutcomes            string
	IlaOutcomes           string
}

// QuarterlyOutcome is the best value seen for each field across a client's
// notes in one quarter.
type QuarterlyOutcome struct {
	Quarter int
	core.SipServices
	AtDevicesServices     bool
	LivingPlanProgress    string
	CommunityPlanProgress string
	AtOutcomes            string
	IlaOutcomes           string
}

func newQuarterlyOutcome(r OutcomeRow) QuarterlyOutcome {
	living, _ := planScale.resolve(r.LivingPlanProgress)
	community, _ := planScale.resolve(r.CommunityPlanProgress)
	at, _ := assessScale.resolve(r.AtOutcomes)
	ila, _ := assessScale.resolve(r.IlaOutcomes)
	return QuarterlyOutcome{
		Quarter:               r.Quarter,
		SipServices:           r.SipServices,
		AtDevicesServices:     r.AtDevices || r.AtServices,
		LivingPlanProgress:    living,
		CommunityPlanProgress: community,
		AtOutcomes:            at,
		IlaOutcomes:           ila,
	}
}

func (q *QuarterlyOutcome) fold(r OutcomeRow) {
	q.SipServices = orServices(q.SipServices, r.SipServices)
	q.AtDevicesServices = q.AtDevicesServices || r.AtDevices || r.AtServices
	if r.LivingPlanProgress != "" {
		q.LivingPlanProgress = planScale.fold(q.LivingPlanProgress, r.LivingPlanProgress)
	}
	if r.CommunityPlanProgress != "" {
		q.CommunityPlanProgress = planScale.fold(q.CommunityPlanProgress, r.CommunityPlanProgress)
	}
	if r.AtOutcomes != "" {
		q.AtOutcomes = assessScale.fold(q.AtOutcomes, r.AtOutcomes)
	}
	if r.IlaOutcomes != "" {
		q.IlaOutcomes = assessScale.fold(q.IlaOutcomes, r.IlaOutcomes)
	}
}

func orServices(a, b core.SipServices) core.SipServices {
	return core.SipServices{
		IndependentLiving: a.IndependentLiving || b.IndependentLiving,
		VisionScreening:   a.VisionScreening || b.VisionScreening,
		Treatment:         a.Treatment || b.Treatment,
		AtDevices:         a.AtDevices || b.AtDevices,
		AtServices:        a.AtServices || b.AtServices,
		Orientation:       a.Orientation || b.Orientation,
		Communications:    a.Communications || b.Communications,
		Dls:               a.Dls || b.Dls,
		Support:           a.Support || b.Support,
		Advocacy:          a.Advocacy || b.Advocacy,
		Counseling:        a.Counseling || b.Counseling,
		Information:       a.Information || b.Information,
		Services:          a.Services || b.Services,
	}
}

// ClientOutcomes holds a client's resolved outcomes, indexed by quarter.
type ClientOutcomes struct {
	ContactID  int64
	ClientName string
	Quarters   [5]*QuarterlyOutcome
}

// UnknownQuarters counts rows AggregateOutcomes will drop.
func UnknownQuarters(rows []OutcomeRow) int {
	n := 0
	for _, r := range rows {
		if core.QuarterLabel(r.Quarter) == "" {
			n++
		}
	}
	return n
}

// AggregateOutcomes folds note rows per client and quarter. Clients keep the
// order of their first note; rows with an unknown quarter are dropped.
func AggregateOutcomes(rows []OutcomeRow) []ClientOutcomes {
	acc := newOrdered[int64, ClientOutcomes]()
	for _, r := range rows {
		if core.QuarterLabel(r.Quarter) == "" {
			continue
		}
		acc.upsert(r.ContactID, func() ClientOutcomes {
			return ClientOutcomes{ContactID: r.ContactID, ClientName: r.ClientName}
		}, func(c *ClientOutcomes) {
			if q := c.Quarters[r.Quarter]; q != nil {
				q.fold(r)
				return
			}
			q := newQuarterlyOutcome(r)
			c.Quarters[r.Quarter] = &q
		})
	}

	out := make([]ClientOutcomes, 0, acc.len())
	acc.each(func(_ int64, c *ClientOutcomes) {
		out = append(out, *c)
	})
	return out
}

var servicesHeader = []string{
	"Program Participant", "$ Total expenditures from all sources of program funding",
	"Vision  Assessment (Screening/Exam/evaluation)", "$ Cost of Vision Assessment",
	"Surgical or Therapeutic Treatment", "$ Cost of Surgical/ Therapeutic Treatment",
	"$ Total expenditures from all sources of program funding", "Received AT Devices or Services B2",
	"$ Total for AT Devices", "$ Total for AT Services", "AT Goal Outcomes",
	"$ Total expenditures from all sources of program funding", "Received IL/A Services",
	"Received O&M", "Received Communication Skills", "Received Daily Living Skills",
	"Received Advocacy training", "Received Adjustment Counseling", "Received I&R",
	"Received Other Services", "IL/A Service Goal Outcomes",
	"$ Total expenditures from all sources of program funding", "Received Supportive Service",
	"# of Cases Assessed", "Living Situation Outcomes", "Home and Community involvement Outcomes",
}

// SipServicesReport builds the quarterly services export: one row per client
// per quarter, quarters in Q1..Q4 order.
func SipServicesReport(rows []OutcomeRow, quarter, startYear int) Document {
	doc := Document{
		Name:   "SIP Quarterly Services Report",
		Period: "Q" + strconv.Itoa(quarter) + " - " + core.FiscalYear(startYear),
		Header: servicesHeader,
	}
	for _, c := range AggregateOutcomes(rows) {
		for q := 1; q <= 4; q++ {
			o := c.Quarters[q]
			if o == nil {
				continue
			}
			doc.Rows = append(doc.Rows, []string{
				c.ClientName, "0", "", "", "", "", "",
				yesNo(o.AtDevicesServices), "", "", o.AtOutcomes, "",
				yesNo(o.IndependentLiving), yesNo(o.Orientation),
				yesNo(o.Communications), yesNo(o.Dls), yesNo(o.Advocacy),
				yesNo(o.Counseling), yesNo(o.Information), yesNo(o.Services),
				o.IlaOutcomes, "", yesNo(o.Support), "",
				o.LivingPlanProgress, o.CommunityPlanProgress,
			})
		}
	}
	return doc
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
