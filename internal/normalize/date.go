package normalize

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	"20060102",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// CanonicalDate converts the date renderings used by the sources into
// YYYY-MM-DD. Time of day and zone information is discarded.
func CanonicalDate(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if i := strings.IndexAny(trimmed, "T "); i > 0 {
		trimmed = trimmed[:i]
	}
	// integer dates sometimes arrive rendered as floats
	trimmed = strings.TrimSuffix(trimmed, ".0")

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// EpiWeekStart returns the Sunday starting MMWR week `week` of `year`. Week 1
// is the first Sunday to Saturday week with at least four days in the year.
func EpiWeekStart(year, week int) string {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	weekday := int(jan1.Weekday())
	var first time.Time
	if weekday <= int(time.Wednesday) {
		first = jan1.AddDate(0, 0, -weekday)
	} else {
		first = jan1.AddDate(0, 0, 7-weekday)
	}
	return first.AddDate(0, 0, (week-1)*7).Format(dateLayout)
}
