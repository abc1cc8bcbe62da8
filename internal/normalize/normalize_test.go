package normalize

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func text(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

// ============================================================================
// NormalizePhone Tests
// ============================================================================

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Text
		want  pgtype.Text
	}{
		{"dash and trailing space", text("98765-43210 "), text("+91-9876543210")},
		{"too short", text("123"), pgtype.Text{}},
		{"null propagates", pgtype.Text{}, pgtype.Text{}},
		{"country code kept once", text("+91 98765 43210"), text("+91-9876543210")},
		{"leading zero trunk prefix", text("09876543210"), text("+91-9876543210")},
		{"parentheses and dots", text("(987) 654.3210"), text("+91-9876543210")},
		{"exactly nine digits", text("987654321"), pgtype.Text{}},
		{"no digits", text("n/a"), pgtype.Text{}},
		{"empty string", text(""), pgtype.Text{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%+v) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// NormalizeCategory Tests
// ============================================================================

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Text
		want  pgtype.Text
	}{
		{"padded lowercase", text(" electronics "), text("Electronics")},
		{"upper case", text("FASHION"), text("Fashion")},
		{"multi word", text("home  appliances"), text("Home  Appliances")},
		{"already titled", text("Groceries"), text("Groceries")},
		{"null propagates", pgtype.Text{}, pgtype.Text{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCategory(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeCategory(%+v) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Trim Tests
// ============================================================================

func TestTrim(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Text
		want  pgtype.Text
	}{
		{"surrounding spaces", text("  Mumbai \t"), text("Mumbai")},
		{"inner spaces kept", text(" New Delhi "), text("New Delhi")},
		{"whitespace only becomes null", text("   "), pgtype.Text{}},
		{"null stays null", pgtype.Text{}, pgtype.Text{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trim(tt.input); got != tt.want {
				t.Errorf("Trim(%+v) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// ParseLocaleDate Tests
// ============================================================================

func TestParseLocaleDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		input     pgtype.Text
		want      time.Time
		wantValid bool
	}{
		{"iso", text("2024-01-15"), day(2024, time.January, 15), true},
		{"day first slash", text("15/01/2024"), day(2024, time.January, 15), true},
		{"ambiguous resolved day first", text("03/04/2024"), day(2024, time.April, 3), true},
		{"day first dash", text("15-01-2024"), day(2024, time.January, 15), true},
		{"single digit day and month", text("5/3/2024"), day(2024, time.March, 5), true},
		{"dotted", text("01.02.2023"), day(2023, time.February, 1), true},
		{"month name", text("Jan 15, 2024"), day(2024, time.January, 15), true},
		{"day month name", text("15-Jan-2024"), day(2024, time.January, 15), true},
		{"iso with time", text("2024-01-15 10:30:00"), day(2024, time.January, 15), true},
		{"two digit year", text("15/01/24"), day(2024, time.January, 15), true},
		{"padded", text(" 2024-01-15 "), day(2024, time.January, 15), true},
		{"month first slash", text("03/15/2024"), day(2024, time.March, 15), true},
		{"month first dash", text("01-22-2023"), day(2023, time.January, 22), true},
		{"month first two digit year", text("12/31/23"), day(2023, time.December, 31), true},
		{"neither reading valid", text("13/13/2024"), time.Time{}, false},
		{"garbage", text("not a date"), time.Time{}, false},
		{"empty", text(""), time.Time{}, false},
		{"null", pgtype.Text{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocaleDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseLocaleDate(%q).Valid = %v, want %v", tt.input.String, got.Valid, tt.wantValid)
			}
			if tt.wantValid && !got.Time.Equal(tt.want) {
				t.Errorf("ParseLocaleDate(%q) = %v, want %v", tt.input.String, got.Time, tt.want)
			}
		})
	}
}

func TestParseLocaleDate_TwoDigitYearPivot(t *testing.T) {
	// A year far beyond the pivot belongs to the previous century
	got := ParseLocaleDate(text("01/01/68"))
	if !got.Valid {
		t.Fatal("expected valid date")
	}
	if got.Time.Year() != 2068 && got.Time.Year() != 1968 {
		t.Fatalf("unexpected year %d", got.Time.Year())
	}
	if got.Time.Year() > time.Now().Year()+TwoDigitYearPivot {
		t.Errorf("year %d should have been pivoted", got.Time.Year())
	}
}
