package api

import (
	"net/http"

	"github.com/phrazzld/pkgwatch/internal/api/shared"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/phrazzld/pkgwatch/internal/service"
)

// PackageHandler handles package and URL check requests.
type PackageHandler struct {
	packages service.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(packages service.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// CreatePackage handles POST /api/packages.
func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req CreatePackageRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	pkg, err := h.packages.CreatePackage(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContext(r.Context()).Info("package registered", "package_id", pkg.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, packageToResponse(pkg))
}

// GetPackage handles GET /api/packages/{id}.
func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	pkg, err := h.packages.GetPackage(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, packageToResponse(pkg))
}

// RequestURLCheck handles POST /api/packages/{id}/url-check. The check runs
// asynchronously, so the response is 202 Accepted.
func (h *PackageHandler) RequestURLCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.packages.RequestURLCheck(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, URLCheckQueuedResponse{Status: "queued"})
}

// RequestAllURLChecks handles POST /api/url-checks. A partially failed sweep
// still reports how many checks were queued.
func (h *PackageHandler) RequestAllURLChecks(w http.ResponseWriter, r *http.Request) {
	n, err := h.packages.RequestAllURLChecks(r.Context())
	if err != nil && n == 0 {
		HandleAPIError(w, r, err, "Failed to request URL checks")
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Warn("some URL checks were not requested",
			"error", err,
			"requested", n)
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, URLChecksRequestedResponse{Requested: n})
}
