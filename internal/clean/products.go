package clean

import (
	"context"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/normalize"
	"github.com/JonMunkholm/fleximart/internal/quality"
	"github.com/shopspring/decimal"
)

// PricePlaces is the scale the imputed mean price is rounded to.
const PricePlaces = 2

// Products cleans the products extract.
//
// Exact duplicates are removed after trimming and categories are title-cased.
// Missing stock becomes 0. Missing prices take the mean of the prices present
// after deduplication, computed before any substitution.
func Products(ctx context.Context, raw []model.RawProduct, m *quality.Metrics) []model.CleanProduct {
	logger := logging.FromContext(ctx).With("entity", model.EntityProducts)

	trimmed := make([]model.RawProduct, len(raw))
	for i, r := range raw {
		r.ProductName = normalize.Trim(r.ProductName)
		r.Category = normalize.Trim(r.Category)
		trimmed[i] = r
	}

	unique, dups := dedup(trimmed, productKey)
	m.Add(KeyProductsDuplicates, dups)

	mean, havePrices := MeanPrice(unique)
	if !havePrices && len(unique) > 0 {
		logger.Warn("no product prices present, imputing zero")
	}

	out := make([]model.CleanProduct, 0, len(unique))
	priceFilled, stockFilled := 0, 0
	for _, r := range unique {
		p := model.CleanProduct{
			ProductName: r.ProductName,
			Category:    normalize.NormalizeCategory(r.Category),
		}

		if r.Price.Valid {
			p.Price = r.Price.Decimal
		} else {
			p.Price = mean
			priceFilled++
		}

		if r.StockQuantity.Valid {
			p.StockQuantity = r.StockQuantity.Int64
		} else {
			stockFilled++
		}

		out = append(out, p)
	}
	m.Add(KeyProductsPriceFilled, priceFilled)
	m.Add(KeyProductsStockFilled, stockFilled)

	logger.Info("products cleaned",
		"read", len(raw),
		"duplicates", dups,
		"price_imputed", priceFilled,
		"stock_filled", stockFilled,
		"mean_price", mean.StringFixed(PricePlaces),
	)
	return out
}

// MeanPrice returns the arithmetic mean of the present prices. The mean is
// rounded half away from zero to PricePlaces (2) decimal places so the
// imputed value fits the NUMERIC(12,2) price column; the unrounded mean is
// never exposed. The bool is false (and the mean zero) when no price is present.
func MeanPrice(rows []model.RawProduct) (decimal.Decimal, bool) {
	sum := decimal.Zero
	n := int64(0)
	for _, r := range rows {
		if r.Price.Valid {
			sum = sum.Add(r.Price.Decimal)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(n)).Round(PricePlaces), true
}

func productKey(r model.RawProduct) string {
	var b keyBuilder
	return b.text(r.ProductName).
		text(r.Category).
		decimal(r.Price).
		int8(r.StockQuantity).
		String()
}
