// Package normalize holds the pieces every source transform shares: the
// internal column vocabulary, source schemas, date handling and state keying.
package normalize

// Internal vocabulary, no other column names may leave a transform.
const (
	State       = "State"
	Date        = "date"
	LastUpdated = "lastUpdated"

	Positive                 = "positive"
	Negative                 = "negative"
	PositiveIncrease         = "positiveIncrease"
	NegativeIncrease         = "negativeIncrease"
	TotalTestResults         = "totalTestResults"
	TotalTestResultsIncrease = "totalTestResultsIncrease"
	Death                    = "death"
	DeathIncrease            = "deathIncrease"
	HospitalizedCurrently    = "hospitalizedCurrently"
	HospitalizedIncrease     = "hospitalizedIncrease"
	InIcuCurrently           = "inIcuCurrently"
	Recovered                = "recovered"

	IliPercent         = "ili_percent"
	IliTotal           = "ili_total"
	TotalPatients      = "total_patients"
	TotalSpecimens     = "total_specimens"
	PositiveSpecimens  = "positive_specimens"
	SpecimenPositivity = "specimen_positivity"

	RtMean    = "rt_mean"
	RtLower80 = "rt_lower_80"
	RtUpper80 = "rt_upper_80"

	IcuBedsOccupied  = "icu_beds_occupied"
	IcuBedsTotal     = "icu_beds_total"
	IcuOccupancyRate = "icu_occupancy_rate"
)

var vocabulary = map[string]bool{
	State: true, Date: true, LastUpdated: true,
	Positive: true, Negative: true, PositiveIncrease: true, NegativeIncrease: true,
	TotalTestResults: true, TotalTestResultsIncrease: true,
	Death: true, DeathIncrease: true,
	HospitalizedCurrently: true, HospitalizedIncrease: true, InIcuCurrently: true, Recovered: true,
	IliPercent: true, IliTotal: true, TotalPatients: true,
	TotalSpecimens: true, PositiveSpecimens: true, SpecimenPositivity: true,
	RtMean: true, RtLower80: true, RtUpper80: true,
	IcuBedsOccupied: true, IcuBedsTotal: true, IcuOccupancyRate: true,
}

// InVocabulary reports whether a column name belongs to the internal vocabulary.
func InVocabulary(column string) bool {
	return vocabulary[column]
}
