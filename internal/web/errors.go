package web

// errors.go maps run errors to HTTP responses.
//
// The technical error is logged with the request ID; clients get a short
// message and a code they can quote when reporting problems.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/fleximart/internal/clean"
	"github.com/JonMunkholm/fleximart/internal/extract"
	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/pipeline"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	{pipeline.ErrRunInProgress, http.StatusConflict, "RUN002", "A run is already in progress"},
	{extract.ErrMissingColumn, http.StatusUnprocessableEntity, "EXT001", "A source file is missing a required column"},
	{extract.ErrEmptySource, http.StatusUnprocessableEntity, "EXT002", "A source file is empty"},
	{clean.ErrContractViolation, http.StatusUnprocessableEntity, "DRV001", "A sales line has no quantity or unit price"},
}

// classifyError returns the status, code and client message for err.
func classifyError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, "ERR000", "The run failed"
}

// respondError logs err and writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	logging.FromContext(r.Context()).Log(r.Context(), logging.LevelForStatus(status), "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err,
	)

	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
