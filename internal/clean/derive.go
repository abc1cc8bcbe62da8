package clean

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/shopspring/decimal"
)

// ErrContractViolation is returned when a cleaned sales line lacks a field
// the derivation needs. The cleaners do not filter on quantity or unit price,
// so a source that omits them breaks the contract and the run must stop.
var ErrContractViolation = errors.New("data contract violation")

// DeriveSubtotals sets Subtotal = Quantity * UnitPrice on every line.
// The input is not modified.
func DeriveSubtotals(lines []model.CleanSalesLine) ([]model.CleanSalesLine, error) {
	out := make([]model.CleanSalesLine, len(lines))
	for i, l := range lines {
		if !l.Quantity.Valid || !l.UnitPrice.Valid {
			return nil, fmt.Errorf("%w: sales line %d (transaction %q) has no quantity or unit_price",
				ErrContractViolation, l.Line, l.TransactionID.String)
		}
		l.Subtotal = l.UnitPrice.Decimal.Mul(decimal.NewFromInt(l.Quantity.Int64))
		out[i] = l
	}
	return out, nil
}
