// Package extract reads the three raw CSV extracts (customers, products,
// sales) into typed raw records.
//
// Extraction validates the file boundary only: the file must be readable and
// its header must contain every expected column. Cell values are passed on
// untouched apart from numeric parsing; trimming, deduplication and
// missing-value handling belong to the cleaners.
package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrMissingColumn is returned when a source header lacks an expected column.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptySource is returned when a source has no header row at all.
var ErrEmptySource = errors.New("empty source")

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// utf8BOM is prepended by Windows spreadsheet exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// table is a parsed source: the header index plus data rows with their
// 1-based line numbers.
type table struct {
	name    string
	header  HeaderIndex
	rows    [][]string
	lineNos []int
}

// readTable loads the CSV file at path and locates the header containing all
// columns. Blank rows are skipped.
func readTable(name, path string, columns []string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s source: %w", name, err)
	}
	return parseTable(name, data, columns)
}

func parseTable(name string, data []byte, columns []string) (*table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s source: %w", name, ErrEmptySource)
	}

	headerIdx, missing := findHeaderInRecords(records, columns)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%s source: %w: %s", name, ErrMissingColumn, strings.Join(missing, ", "))
	}

	t := &table{
		name:   name,
		header: MakeHeaderIndex(records[headerIdx]),
	}
	for i, row := range records[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		t.rows = append(t.rows, row)
		t.lineNos = append(t.lineNos, headerIdx+i+2) // 1-indexed, after header
	}

	return t, nil
}

// cell returns the raw value of column in row; "" when the row is short.
func (t *table) cell(row []string, column string) string {
	pos, ok := t.header[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanHeader(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanHeader removes common CSV artifacts from a header cell:
// surrounding whitespace, an Excel formula prefix (="...") and quotes.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// findHeaderInRecords returns the index of the first row (within
// MaxHeaderSearchRows) that contains every required column in any order.
// When none does, it returns -1 and the columns missing from the first row.
func findHeaderInRecords(records [][]string, required []string) (int, []string) {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	var firstMissing []string
	for i := 0; i < maxRows; i++ {
		if isEmptyRow(records[i]) {
			continue
		}
		missing := missingColumns(MakeHeaderIndex(records[i]), required)
		if len(missing) == 0 {
			return i, nil
		}
		if firstMissing == nil {
			firstMissing = missing
		}
	}
	if firstMissing == nil {
		firstMissing = required
	}
	return -1, firstMissing
}

func missingColumns(idx HeaderIndex, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := idx[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
