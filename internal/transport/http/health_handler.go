package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves liveness and version info
type HealthHandler struct {
	catalogs CatalogProvider
	version  string
	started  time.Time
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalogs CatalogProvider, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		catalogs: catalogs,
		version:  version,
		started:  time.Now().UTC(),
		logger:   logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Health)

	return r
}

// Health handles GET /api/healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.catalogs.Snapshot()

	status := "healthy"
	code := http.StatusOK
	var generation uint64
	var services int
	if snap != nil {
		generation = snap.Generation()
		services = snap.Len()
	}
	if services == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	render.Status(r, code)
	render.JSON(w, r, map[string]interface{}{
		"status":             status,
		"version":            h.version,
		"uptime_seconds":     int64(time.Since(h.started).Seconds()),
		"catalog_generation": generation,
		"catalog_services":   services,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}
