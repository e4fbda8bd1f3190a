package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pkgwatch/internal/api"
	apiMiddleware "github.com/phrazzld/pkgwatch/internal/api/middleware"
	"github.com/phrazzld/pkgwatch/internal/service"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
	"github.com/phrazzld/pkgwatch/internal/store"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() (http.Handler, error) {
	return newRouter(app.packageService, app.userStore, app.tokenService, app.passwordHasher, app.logger)
}

// newRouter builds the HTTP routes from their dependencies.
func newRouter(
	packages service.PackageService,
	users store.UserStore,
	tokens auth.TokenService,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (http.Handler, error) {
	authHandler, err := api.NewAuthHandler(users, tokens, hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth handler: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(logger))
	r.Use(middleware.Recoverer)

	packageHandler := api.NewPackageHandler(packages)
	userHandler := api.NewUserHandler(packages)
	authMiddleware := apiMiddleware.NewAuthMiddleware(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/packages", packageHandler.CreatePackage)
			r.Get("/packages/{id}", packageHandler.GetPackage)
			r.Post("/packages/{id}/url-check", packageHandler.RequestURLCheck)
			r.Post("/url-checks", packageHandler.RequestAllURLChecks)

			r.Post("/users", userHandler.CreateUser)
			r.Get("/users/{id}/notifications", userHandler.ListNotifications)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r, nil
}
