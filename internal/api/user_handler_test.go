package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/service"
	"github.com/phrazzld/pkgwatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHandler(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		user := &domain.User{ID: uuid.New(), Email: "ann@example.com", Name: "Ann", CreatedAt: time.Now()}
		svc.On("CreateUser", mock.Anything, service.CreateUserInput{Email: "ann@example.com", Name: "Ann"}).
			Return(user, nil).Once()

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/users",
			`{"email":"ann@example.com","name":"Ann"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "ann@example.com", resp.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/users", `{"email":"ann"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid email: invalid email format", decodeError(t, rr).Error)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		svc.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: email already registered", store.ErrDuplicate)).Once()

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/users", `{"email":"ann@example.com"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Resource already exists", decodeError(t, rr).Error)
	})
}

func TestListNotificationsHandler(t *testing.T) {
	t.Parallel()

	t.Run("lists notifications", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		userID := uuid.New()
		pkg := samplePackage()
		n, err := domain.NewNotification(userID, domain.NotificationInvalidPackageURL, pkg)
		require.NoError(t, err)
		svc.On("ListNotifications", mock.Anything, userID).Return([]*domain.Notification{n}, nil).Once()

		rr := doRequestAs(t, newTestRouter(svc), userID, http.MethodGet,
			"/api/users/"+userID.String()+"/notifications", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var resp []NotificationResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "invalid_package_url", resp[0].Type)
		assert.Equal(t, pkg.ID, resp[0].PackageID)
		assert.JSONEq(t, string(n.Payload), string(resp[0].Payload))
	})

	t.Run("empty list is an array", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		userID := uuid.New()
		svc.On("ListNotifications", mock.Anything, userID).Return([]*domain.Notification(nil), nil).Once()

		rr := doRequestAs(t, newTestRouter(svc), userID, http.MethodGet,
			"/api/users/"+userID.String()+"/notifications", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		userID := uuid.New()
		svc.On("ListNotifications", mock.Anything, userID).Return(nil, store.ErrUserNotFound).Once()

		rr := doRequestAs(t, newTestRouter(svc), userID, http.MethodGet,
			"/api/users/"+userID.String()+"/notifications", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", decodeError(t, rr).Error)
	})

	t.Run("another user's inbox", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)
		owner := uuid.New()

		rr := doRequestAs(t, newTestRouter(svc), uuid.New(), http.MethodGet,
			"/api/users/"+owner.String()+"/notifications", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", decodeError(t, rr).Error)
		svc.AssertNotCalled(t, "ListNotifications", mock.Anything, mock.Anything)
	})

	t.Run("no authenticated caller", func(t *testing.T) {
		t.Parallel()
		svc := new(MockPackageService)

		rr := doRequestAs(t, newTestRouter(svc), uuid.Nil, http.MethodGet,
			"/api/users/"+uuid.NewString()+"/notifications", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		svc.AssertNotCalled(t, "ListNotifications", mock.Anything, mock.Anything)
	})
}
