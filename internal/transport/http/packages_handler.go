package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "screenapi/internal/errors"
	"screenapi/internal/packages"
	"screenapi/internal/rules"
)

// PackagesHandler serves package validation, pricing, and the saved-package
// CRUD endpoints
type PackagesHandler struct {
	service      SelectionService
	repo         packages.Repository
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewPackagesHandler creates a new packages handler
func NewPackagesHandler(service SelectionService, repo packages.Repository, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PackagesHandler {
	return &PackagesHandler{
		service:      service,
		repo:         repo,
		logger:       logger.With(slog.String("component", "packages_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the package routes
func (h *PackagesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListPackages)
	r.Post("/", h.CreatePackage)
	r.Post("/validate", h.ValidateSelection)
	r.Post("/price", h.PriceSelection)
	r.Get("/recent", h.GetMostRecent)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetPackage)
		r.Put("/", h.UpdatePackage)
		r.Delete("/", h.DeletePackage)
	})

	return r
}

// validateRequest is the body of validate and price calls
type validateRequest struct {
	ServiceIDs []string `json:"service_ids"`
}

// createPackageRequest is the body of a package create
type createPackageRequest struct {
	Name       string   `json:"name" validate:"required,max=120"`
	ServiceIDs []string `json:"service_ids"`
}

// updatePackageRequest is the body of a package update; absent fields are
// left unchanged
type updatePackageRequest struct {
	Name       *string   `json:"name"`
	ServiceIDs *[]string `json:"service_ids"`
}

// ValidateSelection handles POST /api/packages/validate. Rule violations
// are the response, not an error status.
func (h *PackagesHandler) ValidateSelection(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Validate(r.Context(), req.ServiceIDs)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// PriceSelection handles POST /api/packages/price
func (h *PackagesHandler) PriceSelection(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	breakdown, err := h.service.Price(r.Context(), req.ServiceIDs)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	render.JSON(w, r, newPriceResponse(breakdown))
}

// ListPackages handles GET /api/packages; each package carries its current
// pricing so the list view needs no extra round trips.
func (h *PackagesHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.repo.All()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.StorageError("list", err))
		return
	}

	payloads := make([]map[string]interface{}, 0, len(pkgs))
	for _, pkg := range pkgs {
		breakdown, err := h.service.Price(r.Context(), pkg.ServiceIDs)
		if err != nil {
			h.handleSelectionError(w, r, err)
			return
		}
		payloads = append(payloads, map[string]interface{}{
			"id":          pkg.ID,
			"name":        pkg.Name,
			"service_ids": pkg.ServiceIDs,
			"created_at":  pkg.CreatedAt,
			"updated_at":  pkg.UpdatedAt,
			"pricing":     pricingPayload(breakdown.Result),
		})
	}

	render.JSON(w, r, map[string]interface{}{"packages": payloads})
}

// CreatePackage handles POST /api/packages. A selection that violates
// dependency/conflict rules is rejected with 422 and the full validation
// payload so the builder can render it.
func (h *PackagesHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req createPackageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "Package name is required"))
		return
	}

	result, err := h.service.Validate(r.Context(), req.ServiceIDs)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}
	if !result.Valid {
		h.errorHandler.HandleError(w, r, apierrors.UnprocessableWithDetails("Invalid package configuration", result))
		return
	}

	pkg := packages.NewPackage(req.Name, req.ServiceIDs)
	if err := h.repo.Create(pkg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.StorageError("create", err))
		return
	}

	h.logger.InfoContext(r.Context(), "package created",
		slog.String("package_id", pkg.ID),
		slog.Int("services", len(pkg.ServiceIDs)))

	response, err := h.enrichedPackage(r, pkg, result)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response)
}

// GetMostRecent handles GET /api/packages/recent
func (h *PackagesHandler) GetMostRecent(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.repo.FindMostRecent()
	if err != nil {
		h.handleRepoError(w, r, "No packages", err)
		return
	}
	h.renderEnriched(w, r, pkg)
}

// GetPackage handles GET /api/packages/{id}
func (h *PackagesHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pkg, err := h.repo.Find(id)
	if err != nil {
		h.handleRepoError(w, r, "Package "+id, err)
		return
	}
	h.renderEnriched(w, r, pkg)
}

// UpdatePackage handles PUT /api/packages/{id}
func (h *PackagesHandler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pkg, err := h.repo.Find(id)
	if err != nil {
		h.handleRepoError(w, r, "Package "+id, err)
		return
	}

	var req updatePackageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != "" {
			pkg.Rename(name)
		}
	}
	if req.ServiceIDs != nil {
		pkg.SetServices(*req.ServiceIDs)
	}

	result, err := h.service.Validate(r.Context(), pkg.ServiceIDs)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}
	if !result.Valid {
		h.errorHandler.HandleError(w, r, apierrors.UnprocessableWithDetails("Invalid package configuration", result))
		return
	}

	if err := h.repo.Update(pkg); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.StorageError("update", err))
		return
	}

	response, err := h.enrichedPackage(r, pkg, result)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}
	render.JSON(w, r, response)
}

// DeletePackage handles DELETE /api/packages/{id}
func (h *PackagesHandler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id); err != nil {
		h.handleRepoError(w, r, "Package "+id, err)
		return
	}

	h.logger.InfoContext(r.Context(), "package deleted", slog.String("package_id", id))
	render.NoContent(w, r)
}

// renderEnriched validates a stored package and renders it with services,
// pricing, and validation attached
func (h *PackagesHandler) renderEnriched(w http.ResponseWriter, r *http.Request, pkg packages.Package) {
	result, err := h.service.Validate(r.Context(), pkg.ServiceIDs)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}

	response, err := h.enrichedPackage(r, pkg, result)
	if err != nil {
		h.handleSelectionError(w, r, err)
		return
	}
	render.JSON(w, r, response)
}

func (h *PackagesHandler) enrichedPackage(r *http.Request, pkg packages.Package, result rules.Result) (map[string]interface{}, error) {
	breakdown, err := h.service.Price(r.Context(), pkg.ServiceIDs)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"package":    packagePayload(pkg),
		"services":   linePayloads(breakdown.Items),
		"pricing":    pricingPayload(breakdown.Result),
		"validation": result,
	}, nil
}

func (h *PackagesHandler) handleRepoError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	if errors.Is(err, packages.ErrNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(resource))
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.StorageError("read", err))
}

func (h *PackagesHandler) handleSelectionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rules.ErrInvalidInput) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
