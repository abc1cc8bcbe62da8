package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestToPgNumeric(t *testing.T) {
	tests := []string{"0", "45.0", "19.99", "-3.5", "1234567890.123456"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			d := decimal.RequireFromString(s)
			n := ToPgNumeric(d)
			if !n.Valid {
				t.Fatal("numeric should be valid")
			}
			if back := decimal.NewFromBigInt(n.Int, n.Exp); !back.Equal(d) {
				t.Errorf("ToPgNumeric(%s) = %s", s, back)
			}
		})
	}
}

func TestToPgDate(t *testing.T) {
	in := time.Date(2024, time.March, 5, 17, 45, 0, 0, time.FixedZone("IST", 19800))
	got := ToPgDate(in)

	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Valid || !got.Time.Equal(want) {
		t.Errorf("ToPgDate = %+v, want %v", got, want)
	}
	if ToPgDate(time.Time{}).Valid {
		t.Error("zero time should be null")
	}
}

func TestIsKnownTable(t *testing.T) {
	if !isKnownTable("orders") {
		t.Error("orders should be known")
	}
	if isKnownTable("orders; DROP TABLE customers") {
		t.Error("arbitrary input must be rejected")
	}
}
