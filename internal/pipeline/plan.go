package pipeline

import (
	"covidexit/internal/summary"
)

// Logical report names, configuration maps each to a workbook key.
const (
	ReportCdcGuidance     = "cdc_guidance"
	ReportCriteria1       = "criteria_1"
	ReportCriteria2       = "criteria_2"
	ReportCriteria3       = "criteria_3"
	ReportCriteria5       = "criteria_5"
	ReportCriteria6       = "criteria_6"
	ReportCriteriaSummary = "criteria_summary"
	ReportHomepage        = "homepage"
)

const (
	TabStateSummary       = "State Summary"
	TabAllStateData       = "All State Data"
	TabHistoricalData     = "Historical Data"
	TabHomepageHistorical = "covidtracking.com - states - history - daily - csv"
	TabHomepageCurrent    = "covidtracking.com - states - current - csv"
	TabHomepageRt         = "rt.live - csv"
)

// Step publishes one table. A step either publishes a normalized table as
// is, summarizes it with Criteria first, or publishes the combined view.
type Step struct {
	Name   string
	Report string
	Tab    string
	Output string

	Criteria *summary.Criteria
	// Combined merges the summaries of every criteria computed before it
	// that has headline columns.
	Combined bool
}

// Reports lists the reports a plan publishes to, in order of first use.
func Reports(plan []Step) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range plan {
		if !seen[s.Report] {
			seen[s.Report] = true
			out = append(out, s.Report)
		}
	}
	return out
}

// DefaultPlan is the publishing order of a full run.
func DefaultPlan() []Step {
	return []Step{
		{
			Name:     "state_summary",
			Report:   ReportCdcGuidance,
			Tab:      TabStateSummary,
			Output:   OutputCovidTrackingCDC,
			Criteria: &summary.StateSummary,
		},
		{
			Name:     "criteria_1",
			Report:   ReportCriteria1,
			Tab:      TabStateSummary,
			Output:   OutputCovidTrackingCDC,
			Criteria: &summary.Criteria1,
		},
		{
			Name:     "criteria_2",
			Report:   ReportCriteria2,
			Tab:      TabStateSummary,
			Output:   OutputCovidTrackingCDC,
			Criteria: &summary.Criteria2,
		},
		{
			Name:     "criteria_3",
			Report:   ReportCriteria3,
			Tab:      TabStateSummary,
			Output:   OutputHhsIcu,
			Criteria: &summary.Criteria3,
		},
		{
			Name:   "criteria_3_data",
			Report: ReportCriteria3,
			Tab:    TabHistoricalData,
			Output: OutputHhsIcu,
		},
		{
			Name:   "criteria_5_data",
			Report: ReportCriteria5,
			Tab:    TabAllStateData,
			Output: OutputCdcIli,
		},
		{
			Name:     "criteria_5",
			Report:   ReportCriteria5,
			Tab:      TabStateSummary,
			Output:   OutputCdcIli,
			Criteria: &summary.Criteria5,
		},
		{
			Name:     "criteria_6",
			Report:   ReportCriteria6,
			Tab:      TabStateSummary,
			Output:   OutputCovidTrackingCDC,
			Criteria: &summary.Criteria6,
		},
		{
			Name:     "combined",
			Report:   ReportCriteriaSummary,
			Tab:      TabStateSummary,
			Combined: true,
		},
		{
			Name:   "all_state_data",
			Report: ReportCdcGuidance,
			Tab:    TabAllStateData,
			Output: OutputCovidTrackingCDC,
		},
		{
			Name:   "homepage_historical",
			Report: ReportHomepage,
			Tab:    TabHomepageHistorical,
			Output: OutputCovidTrackingHistorical,
		},
		{
			Name:   "homepage_current",
			Report: ReportHomepage,
			Tab:    TabHomepageCurrent,
			Output: OutputCovidTrackingCurrent,
		},
		{
			Name:   "homepage_rt",
			Report: ReportHomepage,
			Tab:    TabHomepageRt,
			Output: OutputRtLive,
		},
	}
}
