// Package api exposes the conversion engine over HTTP.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/anythingbutmetric/abm/internal/metrics"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// maxRoutesLimit bounds the caller-supplied route cap.
const maxRoutesLimit = 20

// SnapshotProvider supplies the current dataset snapshot. The live
// loader hot-swaps snapshots behind this interface; tests supply a
// fixed snapshot.
type SnapshotProvider interface {
	Snapshot() *snapshot.Snapshot
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	provider SnapshotProvider
	cache    *graph.Cache
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(provider SnapshotProvider, cache *graph.Cache) http.Handler {
	h := &Handler{provider: provider, cache: cache, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /v1/convert", h.convert)
	h.mux.HandleFunc("GET /v1/units", h.listUnits)
	h.mux.HandleFunc("GET /v1/islands", h.listIslands)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// ConvertResponse is the result of a conversion query. MissingLink is
// true when no chain of comparisons connects the two units; that is a
// normal answer, not an error.
type ConvertResponse struct {
	From        string        `json:"from"`
	To          string        `json:"to"`
	Amount      float64       `json:"amount"`
	MissingLink bool          `json:"missing_link"`
	Routes      []graph.Route `json:"routes"`
}

// GET /v1/convert?from=&to=&amount=&max_routes=
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fromID := q.Get("from")
	toID := q.Get("to")
	if fromID == "" || toID == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	amount := 1.0
	if raw := q.Get("amount"); raw != "" {
		var err error
		amount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid amount: %q", raw))
			return
		}
	}

	maxRoutes := 0 // 0 selects the engine default
	if raw := q.Get("max_routes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRoutesLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("max_routes must be 1-%d", maxRoutesLimit))
			return
		}
		maxRoutes = n
	}

	snap := h.provider.Snapshot()
	idx := h.cache.Index(snap)
	routes := graph.FindRoutes(idx, fromID, toID, amount, maxRoutes)

	metrics.ConversionsTotal.Inc()
	metrics.RoutesReturned.Observe(float64(len(routes)))
	if len(routes) == 0 {
		metrics.MissingLinkTotal.Inc()
	}
	if routes == nil {
		routes = []graph.Route{}
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		From:        fromID,
		To:          toID,
		Amount:      amount,
		MissingLink: len(routes) == 0,
		Routes:      routes,
	})
}

// UnitsResponse lists the unit catalogue.
type UnitsResponse struct {
	Units []unit.Unit `json:"units"`
}

// GET /v1/units
func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	snap := h.provider.Snapshot()
	units := snap.Units
	if units == nil {
		units = []unit.Unit{}
	}
	writeJSON(w, http.StatusOK, UnitsResponse{Units: units})
}

// IslandsResponse lists connected components, largest first. The first
// island is the main graph; the rest are conversion gaps worth bridging.
type IslandsResponse struct {
	Islands [][]string `json:"islands"`
}

// GET /v1/islands
func (h *Handler) listIslands(w http.ResponseWriter, r *http.Request) {
	islands := graph.AllIslands(h.provider.Snapshot())
	if islands == nil {
		islands = [][]string{}
	}
	writeJSON(w, http.StatusOK, IslandsResponse{Islands: islands})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.provider.Snapshot() == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot not loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
