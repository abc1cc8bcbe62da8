package store

// errors.go classifies load failures into short operator-facing codes.
//
// # Error Codes Reference
//
//	DB001  unique violation (23505)
//	DB002  foreign key violation (23503)
//	DB003  not-null violation (23502)
//	DB004  check violation (23514)
//	DB005  connection refused / unavailable
//	DB006  connection reset
//	DB007  timeout or deadline exceeded
//	DB008  deadlock detected (40P01)
//	DB009  serialization failure (40001)
//	DB010  undefined table or column (42P01, 42703)
//	RUN001 run cancelled
//	ERR000 anything else
//
// PostgreSQL errors are matched on SQLSTATE first. Errors without one (the
// memory store, network failures) fall back to case-insensitive message
// patterns; the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorInfo describes a classified load error.
type ErrorInfo struct {
	Code       string // Error code for support reference
	Message    string // What happened
	SQLState   string // SQLSTATE when the database reported one
	Constraint string // Violated constraint name, if any
}

type errorPattern struct {
	pattern string
	info    ErrorInfo
}

var sqlStates = map[string]ErrorInfo{
	"23505": {Code: "DB001", Message: "Duplicate key"},
	"23503": {Code: "DB002", Message: "Referenced record does not exist"},
	"23502": {Code: "DB003", Message: "Required value is missing"},
	"23514": {Code: "DB004", Message: "Value violates a check constraint"},
	"40P01": {Code: "DB008", Message: "Deadlock detected"},
	"40001": {Code: "DB009", Message: "Serialization failure"},
	"42P01": {Code: "DB010", Message: "Target table does not exist"},
	"42703": {Code: "DB010", Message: "Target column does not exist"},
}

// errorPatterns is ordered specific before general.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Constraint Errors (DB001-DB004)
	// =========================================================================
	{pattern: "duplicate key", info: sqlStates["23505"]},
	{pattern: "unique constraint", info: sqlStates["23505"]},
	{pattern: "violates unique", info: sqlStates["23505"]},
	{pattern: "foreign key", info: sqlStates["23503"]},
	{pattern: "not-null", info: sqlStates["23502"]},
	{pattern: "null value", info: sqlStates["23502"]},
	{pattern: "check constraint", info: sqlStates["23514"]},

	// =========================================================================
	// Connection Errors (DB005-DB008)
	// =========================================================================
	{pattern: "connection refused", info: ErrorInfo{Code: "DB005", Message: "Database unavailable"}},
	{pattern: "no such host", info: ErrorInfo{Code: "DB005", Message: "Database unavailable"}},
	{pattern: "connection reset", info: ErrorInfo{Code: "DB006", Message: "Database connection lost"}},
	{pattern: "context canceled", info: ErrorInfo{Code: "RUN001", Message: "Run was cancelled"}},
	{pattern: "deadline exceeded", info: ErrorInfo{Code: "DB007", Message: "Database operation timed out"}},
	{pattern: "timeout", info: ErrorInfo{Code: "DB007", Message: "Database operation timed out"}},
	{pattern: "deadlock", info: sqlStates["40P01"]},
}

var defaultInfo = ErrorInfo{Code: "ERR000", Message: "Unexpected load error"}

// Classify maps err to an ErrorInfo. A nil error yields the zero value.
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		info, ok := sqlStates[pgErr.Code]
		if !ok {
			info = defaultInfo
		}
		info.SQLState = pgErr.Code
		info.Constraint = pgErr.ConstraintName
		return info
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.info
		}
	}

	return defaultInfo
}

// Format renders err as a single report line:
// "Message (Code: XXX): original error".
func Format(err error) string {
	if err == nil {
		return ""
	}
	info := Classify(err)
	detail := strings.Join(strings.Fields(err.Error()), " ")
	return fmt.Sprintf("%s (Code: %s): %s", info.Message, info.Code, detail)
}
