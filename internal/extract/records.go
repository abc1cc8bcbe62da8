package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fleximart/internal/config"
	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Expected columns per source.
var (
	CustomerColumns = []string{"first_name", "last_name", "email", "phone", "city", "registration_date"}
	ProductColumns  = []string{"product_name", "category", "price", "stock_quantity"}
	SalesColumns    = []string{"transaction_id", "customer_id", "product_id", "transaction_date", "quantity", "unit_price", "status"}
)

// identifierRegex accepts plain integers and letter-prefixed codes ("C001", "P-12").
var identifierRegex = regexp.MustCompile(`^[A-Za-z]*[-_]?(\d+)$`)

// CSVSource reads the raw extracts from CSV files on disk.
type CSVSource struct {
	paths config.SourcesConfig
}

// NewCSVSource creates a CSVSource for the configured file paths.
func NewCSVSource(paths config.SourcesConfig) *CSVSource {
	return &CSVSource{paths: paths}
}

// Customers reads the customers extract.
func (s *CSVSource) Customers(ctx context.Context) ([]model.RawCustomer, error) {
	t, err := readTable(model.EntityCustomers, s.paths.Customers, CustomerColumns)
	if err != nil {
		return nil, err
	}
	return customersFromTable(t), nil
}

// Products reads the products extract.
func (s *CSVSource) Products(ctx context.Context) ([]model.RawProduct, error) {
	t, err := readTable(model.EntityProducts, s.paths.Products, ProductColumns)
	if err != nil {
		return nil, err
	}
	return productsFromTable(ctx, t), nil
}

// Sales reads the sales extract.
func (s *CSVSource) Sales(ctx context.Context) ([]model.RawSale, error) {
	t, err := readTable(model.EntitySales, s.paths.Sales, SalesColumns)
	if err != nil {
		return nil, err
	}
	return salesFromTable(ctx, t), nil
}

func customersFromTable(t *table) []model.RawCustomer {
	out := make([]model.RawCustomer, 0, len(t.rows))
	for i, row := range t.rows {
		out = append(out, model.RawCustomer{
			Line:             t.lineNos[i],
			FirstName:        ToText(t.cell(row, "first_name")),
			LastName:         ToText(t.cell(row, "last_name")),
			Email:            ToText(t.cell(row, "email")),
			Phone:            ToText(t.cell(row, "phone")),
			City:             ToText(t.cell(row, "city")),
			RegistrationDate: ToText(t.cell(row, "registration_date")),
		})
	}
	return out
}

func productsFromTable(ctx context.Context, t *table) []model.RawProduct {
	p := cellParser{ctx: ctx, table: t}
	out := make([]model.RawProduct, 0, len(t.rows))
	for i, row := range t.rows {
		p.line = t.lineNos[i]
		out = append(out, model.RawProduct{
			Line:          p.line,
			ProductName:   ToText(t.cell(row, "product_name")),
			Category:      ToText(t.cell(row, "category")),
			Price:         p.decimal(row, "price"),
			StockQuantity: p.integer(row, "stock_quantity"),
		})
	}
	return out
}

func salesFromTable(ctx context.Context, t *table) []model.RawSale {
	p := cellParser{ctx: ctx, table: t}
	out := make([]model.RawSale, 0, len(t.rows))
	for i, row := range t.rows {
		p.line = t.lineNos[i]
		out = append(out, model.RawSale{
			Line:            p.line,
			TransactionID:   ToText(t.cell(row, "transaction_id")),
			CustomerID:      p.identifier(row, "customer_id"),
			ProductID:       p.identifier(row, "product_id"),
			TransactionDate: ToText(t.cell(row, "transaction_date")),
			Quantity:        p.integer(row, "quantity"),
			UnitPrice:       p.decimal(row, "unit_price"),
			Status:          ToText(t.cell(row, "status")),
		})
	}
	return out
}

// missingMarkers are cell values that spreadsheet and dataframe exports
// write for a missing value. They are matched exactly after trimming.
var missingMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsMissing reports whether a raw cell holds no value: empty or one of the
// conventional missing-value markers such as "N/A" or "NULL".
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := missingMarkers[s]
	return ok
}

// ToText converts a raw cell to pgtype.Text. The empty string and missing
// markers are null; other whitespace is preserved for the cleaners to trim.
func ToText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	if _, ok := missingMarkers[strings.TrimSpace(s)]; ok {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToDecimal converts a money cell to a nullable decimal.
// Handles currency symbols and thousands separators.
func ToDecimal(s string) (decimal.NullDecimal, bool) {
	if IsMissing(s) {
		return decimal.NullDecimal{}, true
	}
	s = strings.TrimSpace(s)

	for _, sym := range []string{"$", "₹", "€", "£", "Rs.", "INR", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

// ToInt converts an integer cell. Whole-number decimals such as "5.0" are
// accepted since spreadsheet exports often write integers that way.
func ToInt(s string) (pgtype.Int8, bool) {
	if IsMissing(s) {
		return pgtype.Int8{}, true
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return pgtype.Int8{Int64: n, Valid: true}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return pgtype.Int8{}, false
	}
	return pgtype.Int8{Int64: d.IntPart(), Valid: true}, true
}

// ToIdentifier converts a customer or product reference. Letter prefixes are
// dropped, so "C001" refers to customer 1.
func ToIdentifier(s string) (pgtype.Int8, bool) {
	if IsMissing(s) {
		return pgtype.Int8{}, true
	}
	s = strings.TrimSpace(s)
	m := identifierRegex.FindStringSubmatch(s)
	if m == nil {
		return ToInt(s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return pgtype.Int8{}, false
	}
	return pgtype.Int8{Int64: n, Valid: true}, true
}

// cellParser parses typed cells and logs the ones it has to null out.
type cellParser struct {
	ctx   context.Context
	table *table
	line  int
}

func (p *cellParser) decimal(row []string, column string) decimal.NullDecimal {
	raw := p.table.cell(row, column)
	v, ok := ToDecimal(raw)
	if !ok {
		p.warn(column, raw)
	}
	return v
}

func (p *cellParser) integer(row []string, column string) pgtype.Int8 {
	raw := p.table.cell(row, column)
	v, ok := ToInt(raw)
	if !ok {
		p.warn(column, raw)
	}
	return v
}

func (p *cellParser) identifier(row []string, column string) pgtype.Int8 {
	raw := p.table.cell(row, column)
	v, ok := ToIdentifier(raw)
	if !ok {
		p.warn(column, raw)
	}
	return v
}

func (p *cellParser) warn(column, raw string) {
	logging.FromContext(p.ctx).Warn("unparsable cell treated as missing",
		"source", p.table.name,
		"line", p.line,
		"column", column,
		"value", raw,
	)
}
