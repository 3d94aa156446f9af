package summary

import (
	"slices"

	"covidexit/internal/normalize"
)

// Criteria is a named set of summary columns answering one reopening
// guideline, Headline columns are the ones carried into the combined view.
type Criteria struct {
	Name     string
	Title    string
	Columns  []string
	Headline []string
}

var (
	StateSummary = Criteria{
		Name:  "state_summary",
		Title: "State Summary",
		Columns: []string{
			normalize.State,
			normalize.Date,
			normalize.Positive,
			normalize.PositiveIncrease,
			PositiveIncrease7d,
			PositivityRate,
			normalize.Death,
			DeathsPer100k,
			normalize.LastUpdated,
		},
	}

	Criteria1 = Criteria{
		Name:  "criteria_1",
		Title: "Downward trajectory of documented cases",
		Columns: []string{
			normalize.State,
			normalize.Date,
			PositiveIncrease7d,
			PositiveIncreasePrev7d,
			PositiveIncrease7dChange,
			CasesPer100k7d,
			normalize.LastUpdated,
		},
		Headline: []string{PositiveIncrease7dChange, CasesPer100k7d},
	}

	Criteria2 = Criteria{
		Name:  "criteria_2",
		Title: "Downward trajectory of positive tests as a percent of total tests",
		Columns: []string{
			normalize.State,
			normalize.Date,
			PositivityRate7d,
			PositivityRatePrev7d,
			PositivityRate7dChange,
			normalize.LastUpdated,
		},
		Headline: []string{PositivityRate7d, PositivityRate7dChange},
	}

	Criteria3 = Criteria{
		Name:  "criteria_3",
		Title: "Hospital ICU capacity",
		Columns: []string{
			normalize.State,
			normalize.Date,
			normalize.IcuBedsOccupied,
			normalize.IcuBedsTotal,
			IcuOccupancyRate,
		},
		Headline: []string{IcuOccupancyRate},
	}

	Criteria5 = Criteria{
		Name:  "criteria_5",
		Title: "Downward trajectory of influenza-like illnesses",
		Columns: []string{
			normalize.State,
			normalize.Date,
			normalize.IliPercent,
			IliPercentPrev,
			IliPercentChange,
			normalize.SpecimenPositivity,
		},
		Headline: []string{normalize.IliPercent, IliPercentChange},
	}

	Criteria6 = Criteria{
		Name:  "criteria_6",
		Title: "Robust testing program",
		Columns: []string{
			normalize.State,
			normalize.Date,
			TotalTests7d,
			TestsPer100k7d,
			PositivityRate7d,
			normalize.LastUpdated,
		},
		Headline: []string{TestsPer100k7d},
	}
)

// AllCriteria in publishing order.
var AllCriteria = []Criteria{StateSummary, Criteria1, Criteria2, Criteria3, Criteria5, Criteria6}

// CombinedColumns is the projection of the combined view: the state key
// followed by the headline columns of every criteria, each once.
func CombinedColumns(criteria ...Criteria) []string {
	out := []string{normalize.State}
	for _, c := range criteria {
		for _, h := range c.Headline {
			if !slices.Contains(out, h) {
				out = append(out, h)
			}
		}
	}
	return out
}
