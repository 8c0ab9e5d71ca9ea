package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "screenapi/internal/errors"
	"screenapi/internal/infrastructure"
)

// CatalogHandler serves the catalog administration endpoints
type CatalogHandler struct {
	catalogs     CatalogProvider
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.RequestMetrics
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogs CatalogProvider, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.RequestMetrics) *CatalogHandler {
	return &CatalogHandler{
		catalogs:     catalogs,
		logger:       logger.With(slog.String("component", "catalog_handler")),
		errorHandler: errorHandler,
		metrics:      metrics,
	}
}

// Routes returns the catalog routes
func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/reload", h.Reload)

	return r
}

// Reload handles POST /api/catalog/reload. Requests in flight keep the
// snapshot they already hold; a failed reload leaves the previous catalog
// serving.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	err := h.catalogs.Reload(r.Context())
	if h.metrics != nil && h.metrics.CatalogReloads != nil {
		h.metrics.CatalogReloads.Add(r.Context(), 1,
			metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.CatalogError(err))
		return
	}

	snap := h.catalogs.Snapshot()
	h.logger.InfoContext(r.Context(), "catalog reloaded",
		slog.Uint64("generation", snap.Generation()),
		slog.Int("services", snap.Len()))

	render.JSON(w, r, map[string]interface{}{
		"generation": snap.Generation(),
		"services":   snap.Len(),
	})
}
