package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// ============================================================================
// Classify Tests
// ============================================================================

func TestClassify_PgError(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantCode string
	}{
		{"unique", "23505", "DB001"},
		{"foreign key", "23503", "DB002"},
		{"not null", "23502", "DB003"},
		{"check", "23514", "DB004"},
		{"undefined table", "42P01", "DB010"},
		{"unknown state", "XX000", "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: "orders_customer_id_fkey"}
			err := fmt.Errorf("insert order: %w", pgErr)

			got := Classify(err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.SQLState != tt.code {
				t.Errorf("SQLState = %q, want %q", got.SQLState, tt.code)
			}
			if got.Constraint != "orders_customer_id_fkey" {
				t.Errorf("Constraint = %q", got.Constraint)
			}
		})
	}
}

func TestClassify_Patterns(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{errors.New("duplicate key value violates unique constraint"), "DB001"},
		{errors.New("insert order item: violates foreign key constraint"), "DB002"},
		{errors.New("null value in column \"email\""), "DB003"},
		{errors.New("dial tcp: connection refused"), "DB005"},
		{errors.New("read: connection reset by peer"), "DB006"},
		{context.DeadlineExceeded, "DB007"},
		{context.Canceled, "RUN001"},
		{errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := Classify(tt.err); got.Code != tt.wantCode {
				t.Errorf("Classify(%q).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != (ErrorInfo{}) {
		t.Errorf("Classify(nil) = %+v, want zero", got)
	}
}

func TestFormat(t *testing.T) {
	err := errors.New("insert order:\n  violates foreign key constraint")
	got := Format(err)

	if strings.Contains(got, "\n") {
		t.Errorf("Format should be single line: %q", got)
	}
	want := "Referenced record does not exist (Code: DB002): insert order: violates foreign key constraint"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
}

func TestSchema(t *testing.T) {
	ddl := Schema()
	for _, table := range []string{"customers", "products", "orders", "order_items"} {
		if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema missing table %s", table)
		}
	}
}
