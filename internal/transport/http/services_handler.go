package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "screenapi/internal/errors"
	"screenapi/internal/rules"
)

// ServicesHandler serves the catalog read endpoints and the per-service
// can-add / can-remove checks
type ServicesHandler struct {
	catalogs     CatalogProvider
	service      SelectionService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewServicesHandler creates a new services handler
func NewServicesHandler(catalogs CatalogProvider, service SelectionService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ServicesHandler {
	return &ServicesHandler{
		catalogs:     catalogs,
		service:      service,
		logger:       logger.With(slog.String("component", "services_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the service routes
func (h *ServicesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListServices)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetService)
		r.Post("/can-add", h.CanAdd)
		r.Post("/can-remove", h.CanRemove)
	})

	return r
}

// selectionRequest is the body of the can-add / can-remove checks
type selectionRequest struct {
	CurrentServiceIDs []string `json:"current_service_ids"`
}

// ListServices handles GET /api/services
func (h *ServicesHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	cat := h.catalogs.Snapshot()

	byCategory := make(map[string][]ServicePayload)
	for category, services := range cat.ByCategory() {
		byCategory[string(category)] = servicePayloads(services)
	}

	render.JSON(w, r, map[string]interface{}{
		"services":    servicePayloads(cat.All()),
		"by_category": byCategory,
	})
}

// GetService handles GET /api/services/{id}
func (h *ServicesHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	svc, ok := h.catalogs.Snapshot().Get(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("Service "+id))
		return
	}

	render.JSON(w, r, servicePayload(svc))
}

// CanAdd handles POST /api/services/{id}/can-add. Unknown candidates are a
// disallowed decision, not a 404: the package builder renders the reason.
func (h *ServicesHandler) CanAdd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req selectionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	decision, err := h.service.CanAdd(r.Context(), req.CurrentServiceIDs, id)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	render.JSON(w, r, decision)
}

// CanRemove handles POST /api/services/{id}/can-remove
func (h *ServicesHandler) CanRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req selectionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	impact, err := h.service.CanRemove(r.Context(), req.CurrentServiceIDs, id)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	render.JSON(w, r, impact)
}

func (h *ServicesHandler) handleSelectionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rules.ErrInvalidInput) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
