// Package clean applies the per-entity cleaning rules to extracted records.
//
// Every cleaner runs the same stages in order: trim text fields, drop exact
// (or key) duplicates keeping the first occurrence, normalize fields, then
// apply the entity's missing-value policy. Anomalies never fail a run; rows
// are dropped or filled and the matching counter is added to the run metrics.
package clean

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Counter keys recorded by the cleaners, in report order.
const (
	KeyCustomersDuplicates = "customers_duplicates_removed"
	KeyCustomersMissing    = "customers_missing_removed"
	KeyProductsDuplicates  = "products_duplicates_removed"
	KeyProductsPriceFilled = "products_price_imputed"
	KeyProductsStockFilled = "products_stock_filled"
	KeySalesDuplicates     = "sales_duplicates_removed"
	KeySalesInvalid        = "sales_invalid_records_removed"
)

// dedup keeps the first row for every distinct key, preserving source order.
// It returns the kept rows and the number removed.
func dedup[T any](rows []T, key func(T) string) ([]T, int) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}

// keyBuilder joins field values into a dedup key. Null and empty are
// distinct, so "" never collides with a missing value.
type keyBuilder struct {
	sb strings.Builder
}

const (
	keySep  = "\x1f"
	keyNull = "\x00"
)

func (b *keyBuilder) text(v pgtype.Text) *keyBuilder {
	if v.Valid {
		b.sb.WriteString(v.String)
	} else {
		b.sb.WriteString(keyNull)
	}
	b.sb.WriteString(keySep)
	return b
}

func (b *keyBuilder) int8(v pgtype.Int8) *keyBuilder {
	if v.Valid {
		b.sb.WriteString(strconv.FormatInt(v.Int64, 10))
	} else {
		b.sb.WriteString(keyNull)
	}
	b.sb.WriteString(keySep)
	return b
}

// decimal writes the canonical form, so 10.0 and 10.00 compare equal.
func (b *keyBuilder) decimal(v decimal.NullDecimal) *keyBuilder {
	if v.Valid {
		b.sb.WriteString(v.Decimal.String())
	} else {
		b.sb.WriteString(keyNull)
	}
	b.sb.WriteString(keySep)
	return b
}

func (b *keyBuilder) String() string {
	return b.sb.String()
}
