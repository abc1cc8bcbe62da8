// Package templates renders the HTML pages of serve mode as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/fleximart/internal/pipeline"
	"github.com/JonMunkholm/fleximart/internal/quality"
	"github.com/a-h/templ"
)

// DashboardView is the data shown on the dashboard.
type DashboardView struct {
	Run        *pipeline.Run // nil when no run finished in this process
	Entries    []quality.Entry
	Status     pipeline.RunLimiterStatus
	ReportPath string
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>FlexiMart ETL</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2933; }
table { border-collapse: collapse; min-width: 28rem; }
th, td { text-align: left; padding: .35rem .75rem; border-bottom: 1px solid #e4e7eb; }
td.value { font-family: ui-monospace, monospace; }
.ok { color: #1b7f3b; } .fail { color: #b42318; } .muted { color: #7b8794; }
</style>
</head>
<body>
<h1>FlexiMart ETL</h1>
`

// Dashboard renders the latest data-quality report.
func Dashboard(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		if err := runSummary(v).Render(ctx, w); err != nil {
			return err
		}
		if err := ReportTable(v.Entries).Render(ctx, w); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w,
			`<p class="muted">Report file: %s &middot; <a href="/report">plain text</a> &middot; <a href="/api/runs/latest">json</a></p>
</body>
</html>
`, templ.EscapeString(v.ReportPath))
		return err
	})
}

func runSummary(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		switch {
		case v.Status.Running:
			_, err = fmt.Fprintf(w, "<p>Run <code>%s</code> in progress since %s.</p>\n",
				templ.EscapeString(v.Status.RunID), v.Status.StartedAt.Format(time.RFC3339))
		case v.Run == nil:
			_, err = io.WriteString(w, `<p class="muted">No run has finished since the server started.</p>`+"\n")
		case v.Run.Succeeded():
			_, err = fmt.Fprintf(w, `<p class="ok">Run <code>%s</code> loaded successfully at %s.</p>`+"\n",
				templ.EscapeString(v.Run.ID), v.Run.FinishedAt.Format(time.RFC3339))
		default:
			_, err = fmt.Fprintf(w, `<p class="fail">Run <code>%s</code> failed during the %s phase.</p>`+"\n",
				templ.EscapeString(v.Run.ID), templ.EscapeString(string(v.Run.Load.FailedPhase)))
		}
		return err
	})
}

// ReportTable renders report entries as a two-column table.
func ReportTable(entries []quality.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(entries) == 0 {
			_, err := io.WriteString(w, `<p class="muted">No report available.</p>`+"\n")
			return err
		}

		if _, err := io.WriteString(w, "<table>\n<thead><tr><th>Metric</th><th>Value</th></tr></thead>\n<tbody>\n"); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "<tr><td>%s</td><td class=\"value\">%s</td></tr>\n",
				templ.EscapeString(e.Key), templ.EscapeString(e.Value)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody>\n</table>\n")
		return err
	})
}
