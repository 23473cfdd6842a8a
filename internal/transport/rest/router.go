package rest

import "net/http"

// Router is the HTTP route table of the service.
type Router struct {
	mux *http.ServeMux
}

// NewRouter registers the catalog API, the probes and, when metrics is not
// nil, the metrics endpoint at metricsPath.
func NewRouter(catalog *CatalogHandler, health *HealthHandler, metrics http.Handler, metricsPath string) *Router {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/pokemon", catalog.List)
	mux.HandleFunc("GET /api/v1/pokemon/{name}", catalog.Detail)
	mux.HandleFunc("GET /api/v1/types", catalog.Types)
	mux.HandleFunc("GET /api/v1/state", catalog.GetState)
	mux.HandleFunc("PUT /api/v1/state", catalog.PutState)
	mux.HandleFunc("POST /api/v1/refresh", catalog.Refresh)

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	if metrics != nil {
		mux.Handle("GET "+metricsPath, metrics)
	}
	return &Router{mux: mux}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Route returns the pattern that serves r, or "" when none matches.
func (rt *Router) Route(r *http.Request) string {
	_, pattern := rt.mux.Handler(r)
	return pattern
}
