package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/pkgwatch/internal/api/shared"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// AuthHandler handles registration and login, the only unauthenticated
// API routes.
type AuthHandler struct {
	users  store.UserStore
	tokens auth.TokenService
	hasher auth.PasswordHasher

	// dummyHash is compared against when the email is unknown, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users store.UserStore,
	tokens auth.TokenService,
	hasher auth.PasswordHasher,
) (*AuthHandler, error) {
	if users == nil || tokens == nil || hasher == nil {
		return nil, errors.New("auth handler dependencies cannot be nil")
	}
	dummy, err := hasher.Hash("pkgwatch-unknown-user-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare login hash: %w", err)
	}
	return &AuthHandler{users: users, tokens: tokens, hasher: hasher, dummyHash: dummy}, nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := domain.NewUser(req.Email, req.Name)
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, err), "")
		return
	}
	user.HashedPassword, err = h.hasher.Hash(req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			HandleAPIError(w, r, err, "Email already exists")
			return
		}
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. Unknown emails, users created without
// a password and wrong passwords all get the same 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		_ = h.hasher.Compare(h.dummyHash, req.Password)
		HandleAPIError(w, r, fmt.Errorf("%w: unknown email", auth.ErrInvalidCredentials), "")
		return
	case err != nil:
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if user.HashedPassword == "" {
		_ = h.hasher.Compare(h.dummyHash, req.Password)
		HandleAPIError(w, r, fmt.Errorf("%w: user %s has no password", auth.ErrInvalidCredentials, user.ID), "")
		return
	}
	if err := h.hasher.Compare(user.HashedPassword, req.Password); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err), "")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, err := h.tokens.GenerateToken(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	shared.RespondWithJSON(w, r, status, AuthResponse{UserID: user.ID, Token: token})
}
