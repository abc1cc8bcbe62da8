// Package normalize provides the pure field normalizers applied by the entity
// cleaners: phone numbers, category labels and day-first dates.
//
// Every normalizer accepts and returns nullable pgtype values. A null input
// always yields a null output, and an input that cannot be normalized yields
// null rather than an error.
package normalize

import (
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CountryCode is the fixed prefix applied to normalized phone numbers.
const CountryCode = "+91"

// PhoneDigits is the number of trailing digits kept from a phone number.
const PhoneDigits = 10

// NormalizePhone strips every non-digit and formats the last ten digits as
// "+91-XXXXXXXXXX". Fewer than ten digits yields null.
func NormalizePhone(v pgtype.Text) pgtype.Text {
	if !v.Valid {
		return pgtype.Text{}
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v.String)

	if len(digits) < PhoneDigits {
		return pgtype.Text{}
	}

	return pgtype.Text{
		String: CountryCode + "-" + digits[len(digits)-PhoneDigits:],
		Valid:  true,
	}
}

// NormalizeCategory trims the label and title-cases each word:
// " home appliances " becomes "Home Appliances".
func NormalizeCategory(v pgtype.Text) pgtype.Text {
	if !v.Valid {
		return pgtype.Text{}
	}
	// cases.Caser is stateful, so one per call
	s := cases.Title(language.Und).String(strings.TrimSpace(v.String))
	return pgtype.Text{String: s, Valid: true}
}

// Trim removes surrounding whitespace. A value that is empty after trimming
// becomes null.
func Trim(v pgtype.Text) pgtype.Text {
	if !v.Valid {
		return v
	}
	s := strings.TrimFunc(v.String, unicode.IsSpace)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
