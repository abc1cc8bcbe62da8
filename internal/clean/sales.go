package clean

import (
	"context"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/normalize"
	"github.com/JonMunkholm/fleximart/internal/quality"
)

// Sales cleans the sales extract.
//
// Lines sharing a transaction_id keep only the first occurrence; lines with
// no transaction_id share one key. The transaction date becomes the order
// date. Lines missing a customer, a product or a parsable date are dropped.
func Sales(ctx context.Context, raw []model.RawSale, m *quality.Metrics) []model.CleanSalesLine {
	logger := logging.FromContext(ctx).With("entity", model.EntitySales)

	trimmed := make([]model.RawSale, len(raw))
	for i, r := range raw {
		r.TransactionID = normalize.Trim(r.TransactionID)
		r.TransactionDate = normalize.Trim(r.TransactionDate)
		r.Status = normalize.Trim(r.Status)
		trimmed[i] = r
	}

	unique, dups := dedup(trimmed, func(r model.RawSale) string {
		var b keyBuilder
		return b.text(r.TransactionID).String()
	})
	m.Add(KeySalesDuplicates, dups)

	out := make([]model.CleanSalesLine, 0, len(unique))
	invalid := 0
	for _, r := range unique {
		orderDate := normalize.ParseLocaleDate(r.TransactionDate)
		if !r.CustomerID.Valid || !r.ProductID.Valid || !orderDate.Valid {
			invalid++
			logger.Debug("dropping sales line", "line", r.Line,
				"transaction_id", r.TransactionID.String,
				"has_customer", r.CustomerID.Valid,
				"has_product", r.ProductID.Valid,
				"has_date", orderDate.Valid)
			continue
		}

		out = append(out, model.CleanSalesLine{
			Line:          r.Line,
			TransactionID: r.TransactionID,
			CustomerID:    r.CustomerID.Int64,
			ProductID:     r.ProductID.Int64,
			OrderDate:     orderDate.Time,
			Quantity:      r.Quantity,
			UnitPrice:     r.UnitPrice,
			Status:        r.Status,
		})
	}
	m.Add(KeySalesInvalid, invalid)

	logger.Info("sales cleaned",
		"read", len(raw),
		"duplicates", dups,
		"invalid", invalid,
		"kept", len(out),
	)
	return out
}
