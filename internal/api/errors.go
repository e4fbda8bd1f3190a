package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/pkgwatch/internal/api/shared"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that carries no
// internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrPackageNotFound):
		return "Package not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidURL):
		return "Invalid URL: must be an absolute http or https URL"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonFieldPath(fe.Namespace())
		return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// validationMessage keeps the text of the violated domain rule.
func validationMessage(err error) string {
	marker := domain.ErrValidation.Error() + ": "
	msg := err.Error()
	i := strings.LastIndex(msg, marker)
	if i < 0 || i+len(marker) == len(msg) {
		return "Validation error"
	}
	return msg[i+len(marker):]
}

// jsonFieldPath drops the struct name from a validator namespace such as
// "CreatePackageRequest.contributors[0].name". Field names are JSON names
// because the handler validator reports them that way.
func jsonFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "url", "http_url":
		return "invalid URL"
	case "uuid", "uuid4":
		return "invalid ID format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "dive":
		return "invalid entry"
	default:
		return "validation failed"
	}
}
