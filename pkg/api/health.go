package api

import (
	"net/http"

	"github.com/shepherdhq/shepherd/pkg/observability"
)

// NewHealthHandler builds the handler served on the health port: liveness,
// readiness, and the metrics scrape endpoint.
func NewHealthHandler(checker *observability.HealthChecker, metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", checker.Liveness)
	mux.HandleFunc("/readyz", checker.Readiness)
	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}
	return mux
}
