package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/minnowkids/minnow-push-api/api"
	"github.com/minnowkids/minnow-push-api/config"
)

// Metrics exposes the in-process request metrics for the ops dashboard
type Metrics struct{}

// MetricsHandler returns the request summary and per-route aggregates
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	mc := api.GetMetrics()

	b, err := json.Marshal(map[string]interface{}{
		"summary": mc.GetSummary(),
		"routes":  mc.GetRouteMetrics(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
