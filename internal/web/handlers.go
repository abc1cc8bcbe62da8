package web

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/pipeline"
	"github.com/JonMunkholm/fleximart/internal/quality"
	"github.com/JonMunkholm/fleximart/internal/web/templates"
)

// runResponse is the JSON view of a run.
type runResponse struct {
	*pipeline.Run
	Succeeded bool `json:"succeeded"`
}

// handleTriggerRun runs the pipeline and returns its metrics.
// POST /api/runs
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Trigger(runContext(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !run.Succeeded() {
		// Report was written, but the load did not complete
		status = http.StatusOK
	}
	writeJSON(w, status, runResponse{Run: run, Succeeded: run.Succeeded()})
}

// handleLatestRun returns the most recent run.
// GET /api/runs/latest
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run := s.service.Latest()
	if run == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No run has completed yet", Code: "RUN003"})
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Succeeded: run.Succeeded()})
}

// handleRunStatus reports whether a run is active.
// GET /api/runs/status
func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// handleReport serves the report file as plain text.
// GET /report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.reportPath)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "no report has been written yet", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("read report", "path", s.reportPath, "error", err)
		http.Error(w, "could not read report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// handleDashboard renders the latest report as HTML.
// GET /
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := templates.DashboardView{
		Status:     s.service.Status(),
		ReportPath: s.reportPath,
	}

	if run := s.service.Latest(); run != nil {
		view.Run = run
		view.Entries = run.Metrics.Entries()
	} else if f, err := os.Open(s.reportPath); err == nil {
		// Show a report left by an earlier process, e.g. `etl run`
		m, perr := quality.ReadReport(f)
		f.Close()
		if perr == nil {
			view.Entries = m.Entries()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleHealth is a liveness check.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": s.service.Status().Running,
	})
}
