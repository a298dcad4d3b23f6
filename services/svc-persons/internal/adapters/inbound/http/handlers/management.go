package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases/queries"
)

const ManagementPath = "/management"

type ManagementHandler struct {
	app           *usecases.Application
	metricsClient metrics.Client
}

// NewManagementHandler serves health probes and, with a non-nil client,
// the Prometheus exposition.
func NewManagementHandler(app *usecases.Application, metricsClient metrics.Client) *ManagementHandler {
	return &ManagementHandler{
		app:           app,
		metricsClient: metricsClient,
	}
}

func (h *ManagementHandler) Routes(router chi.Router) {
	router.Route(ManagementPath, func(r chi.Router) {
		r.Get("/health/liveness", h.Liveness)
		r.Get("/health/readiness", h.Readiness)

		if h.metricsClient != nil {
			r.Handle("/prometheus", h.metricsClient.Handler())
		}
	})
}

func (h *ManagementHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, queries.LivenessResult{Status: queries.StatusDown})

		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

func (h *ManagementHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, queries.ReadinessResult{Status: queries.StatusDown})

		return
	}

	status := http.StatusOK
	if !result.Ready() {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, result)
}
