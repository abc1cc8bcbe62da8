package web

import (
	"context"
	"net/http"
)

// runContext returns a context for a run triggered by r. It keeps the
// request's values (request ID for log correlation) but not its
// cancellation, so a client disconnecting mid-run cannot abort the load
// halfway through a phase.
func runContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
