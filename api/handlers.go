package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kaosnet/visibility/errs"
	"github.com/kaosnet/visibility/metrics"
	"github.com/kaosnet/visibility/orchestrator"
	"github.com/kaosnet/visibility/store"
)

type handlers struct {
	orch    *orchestrator.Orchestrator
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func (h *handlers) searchVisibility(w http.ResponseWriter, r *http.Request) {
	const endpoint = "visibility_search"
	timer := h.startTimer(endpoint)
	defer timer()

	var req orchestrator.VisibilitySearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reportStatus(endpoint, http.StatusUnprocessableEntity)
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if len(req.Target) != 2 {
		h.reportStatus(endpoint, http.StatusUnprocessableEntity)
		writeError(w, http.StatusUnprocessableEntity, "Target must be [lat, lon]")
		return
	}

	resp, err := h.orch.SearchVisibility(r.Context(), req)
	h.handleSearchResult(w, endpoint, resp, err)
}

func (h *handlers) searchOpportunity(w http.ResponseWriter, r *http.Request) {
	const endpoint = "opportunity_search"
	timer := h.startTimer(endpoint)
	defer timer()

	var req orchestrator.OpportunitySearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reportStatus(endpoint, http.StatusUnprocessableEntity)
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	resp, err := h.orch.SearchOpportunity(r.Context(), req)
	h.handleSearchResult(w, endpoint, resp, err)
}

func (h *handlers) handleSearchResult(w http.ResponseWriter, endpoint string, resp orchestrator.SearchResponse, err error) {
	if err != nil {
		status := h.statusFor(err)
		h.reportStatus(endpoint, status)
		writeError(w, status, err.Error())
		return
	}
	h.reportStatus(endpoint, http.StatusOK)
	writeOK(w, resp)
}

func (h *handlers) listSatellites(w http.ResponseWriter, r *http.Request) {
	const endpoint = "list_satellites"
	timer := h.startTimer(endpoint)
	defer timer()

	sats, err := h.orch.ListSatellites(r.Context())
	if err != nil {
		h.reportStatus(endpoint, http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.reportStatus(endpoint, http.StatusOK)
	writeOK(w, sats)
}

func (h *handlers) getSearch(w http.ResponseWriter, r *http.Request) {
	const endpoint = "get_search"
	timer := h.startTimer(endpoint)
	defer timer()

	id := chi.URLParam(r, "id")
	resp, err := h.orch.GetCached(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCacheMiss) {
			h.reportStatus(endpoint, http.StatusNotFound)
			writeError(w, http.StatusNotFound, "no cached response for id "+id)
			return
		}
		h.reportStatus(endpoint, http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.reportStatus(endpoint, http.StatusOK)
	writeOK(w, resp)
}

// statusFor maps the error taxonomy (spec §7) to an HTTP status.
func (h *handlers) statusFor(err error) int {
	var inputErr *errs.InputError
	if errors.As(err, &inputErr) {
		return http.StatusUnprocessableEntity
	}
	var interpErr *errs.InterpolationError
	if errors.As(err, &interpErr) {
		return http.StatusUnprocessableEntity
	}
	var finderErr *errs.VisibilityFinderError
	if errors.As(err, &finderErr) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (h *handlers) startTimer(endpoint string) func() {
	start := time.Now()
	return func() {
		if h.metrics != nil {
			h.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		}
	}
}

func (h *handlers) reportStatus(endpoint string, status int) {
	if h.metrics == nil {
		return
	}
	statusClass := "2xx"
	switch {
	case status >= 500:
		statusClass = "5xx"
	case status >= 400:
		statusClass = "4xx"
	}
	h.metrics.RequestsTotal.WithLabelValues(endpoint, statusClass).Inc()
}
