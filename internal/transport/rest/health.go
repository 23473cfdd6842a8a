package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
)

// Pinger is a backing dependency that can report liveness, such as the
// postgres pool of the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type statusSource interface {
	Status() aggregator.Status
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	catalog statusSource
	checks  map[string]Pinger
	version string
}

// NewHealthHandler creates a HealthHandler. checks may be nil.
func NewHealthHandler(catalog statusSource, checks map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{catalog: catalog, checks: checks, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Catalog    *aggregator.Status    `json:"catalog,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 once a catalog snapshot is being served,
// 503 before that.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	st := h.catalog.Status()
	if st.State != domain.ReadinessReady {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    st.State.String(),
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check: catalog status, dependency pings with
// latency, and the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st := h.catalog.Status()
	overall := "ok"
	if st.State != domain.ReadinessReady {
		overall = "down"
	}

	components := make(map[string]CompStatus, len(h.checks))
	for name, p := range h.checks {
		start := time.Now()
		if err := p.Ping(ctx); err != nil {
			components[name] = CompStatus{Status: "down"}
			overall = "down"
			continue
		}
		components[name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	status := http.StatusOK
	if overall != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Catalog:    &st,
		Components: components,
		Timestamp:  time.Now(),
	})
}
