package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/service/aggregator"
	"github.com/heartmarshall/pokecatalog/internal/service/catalog"
	"github.com/heartmarshall/pokecatalog/internal/service/query"
)

type queryService interface {
	List(ctx context.Context, q query.Query) (query.ListResult, error)
	Types(ctx context.Context) ([]string, error)
}

type catalogService interface {
	Detail(ctx context.Context, key string) (catalog.Detail, error)
	ViewState() catalog.ViewState
	SetActivePage(ctx context.Context, page int) (catalog.ViewState, error)
}

type refresher interface {
	Refresh(ctx context.Context) (*aggregator.Snapshot, error)
	Status() aggregator.Status
}

// CatalogHandler serves the catalog REST endpoints under /api/v1.
type CatalogHandler struct {
	query   queryService
	catalog catalogService
	agg     refresher
	log     *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(q queryService, c catalogService, agg refresher, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		query:   q,
		catalog: c,
		agg:     agg,
		log:     logger.With("handler", "catalog"),
	}
}

// List returns one page of the filtered catalog. Without a page parameter
// the persisted active page is used.
// GET /api/v1/pokemon?page=1&limit=20&type=fire&search=char
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := query.Query{
		Type:   params.Get("type"),
		Search: params.Get("search"),
	}

	var fields []domain.FieldError
	if v := params.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "page", Message: "must be an integer"})
		}
		q.Page = n
	} else {
		q.Page = h.catalog.ViewState().ActivePage
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "limit", Message: "must be an integer"})
		}
		q.Limit = n
	}
	if len(fields) > 0 {
		writeServiceError(w, r, h.log, domain.NewValidationErrors(fields))
		return
	}

	res, err := h.query.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Detail returns one entity with its resolved cross-references.
// GET /api/v1/pokemon/{name}
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	d, err := h.catalog.Detail(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Types lists the type tags usable as a filter.
// GET /api/v1/types
func (h *CatalogHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.query.Types(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"types": types,
		"none":  domain.TypeFilterNone,
	})
}

// GetState returns the persisted view state.
// GET /api/v1/state
func (h *CatalogHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.ViewState())
}

// PutState stores the active page.
// PUT /api/v1/state {"active_page": 3}
func (h *CatalogHandler) PutState(w http.ResponseWriter, r *http.Request) {
	var req catalog.ViewState
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st, err := h.catalog.SetActivePage(r.Context(), req.ActivePage)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Refresh re-aggregates the catalog bypassing the cache and returns the new
// status. The run keeps going if the client disconnects.
// POST /api/v1/refresh
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.agg.Refresh(r.Context()); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	h.log.InfoContext(r.Context(), "catalog refreshed")
	writeJSON(w, http.StatusOK, h.agg.Status())
}
