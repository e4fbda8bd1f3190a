package api

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/pkgwatch/internal/api/shared"
	"github.com/phrazzld/pkgwatch/internal/service"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// UserHandler handles user and notification requests.
type UserHandler struct {
	packages service.PackageService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(packages service.PackageService) *UserHandler {
	return &UserHandler{packages: packages}
}

// CreateUser handles POST /api/users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.packages.CreateUser(r.Context(), service.CreateUserInput{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// ListNotifications handles GET /api/users/{id}/notifications. Callers can
// only read their own inbox; any other ID is answered as not found.
func (h *UserHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := shared.GetUserID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	userID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}
	if userID != callerID {
		HandleAPIError(w, r, fmt.Errorf("%w: caller %s asked for notifications of %s",
			store.ErrUserNotFound, callerID, userID), "")
		return
	}

	list, err := h.packages.ListNotifications(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, notificationToResponse(n))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
