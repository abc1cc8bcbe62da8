package normalize

// date.go parses the date strings found in the raw extracts.
//
// Numeric forms are read day-first: "03/04/2024" is 3 April 2024, never
// 4 March. A numeric form that cannot be day-first ("03/15/2024") is read
// month-first. Year-first ISO forms and month-name forms are unambiguous and
// also accepted. Parsing is best-effort; anything unrecognized is null.

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
// In Go layouts "2" and "1" accept one or two digits, so "2/1/2006" also
// matches "05/03/2024".
var (
	twoDigitYearLayouts = []string{
		"2/1/06", "2-1-06", "2.1.06",
		"1/2/06", "1-2-06", "1.2.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339,
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2/1/2006 15:04", "2/1/2006 15:04:05", "2-1-2006 15:04:05",
		"2-Jan-2006", "2 Jan 2006", "2 January 2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006",
		"20060102",
		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/2006 15:04", "1/2/2006 15:04:05", "1-2-2006 15:04:05",
	}
)

// ParseLocaleDate parses v preferring day-first, falling back to month-first
// only when the day-first reading is impossible. Absent or
// unparsable input yields an invalid (null) date. The time of day is dropped.
func ParseLocaleDate(v pgtype.Text) pgtype.Date {
	if !v.Valid {
		return pgtype.Date{}
	}
	s := strings.TrimSpace(v.String)
	if s == "" {
		return pgtype.Date{}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return toDate(t)
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return toDate(t)
		}
	}

	return pgtype.Date{}
}

func toDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
