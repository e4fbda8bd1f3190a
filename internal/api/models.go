package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/domain"
	"github.com/phrazzld/pkgwatch/internal/service"
)

// PersonRequest credits an author or contributor on a new package.
// Omitting id creates a new person.
type PersonRequest struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Name   string     `json:"name"              validate:"required,max=255"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// CreatePackageRequest defines the payload for POST /api/packages.
type CreatePackageRequest struct {
	Name         string          `json:"name"                   validate:"required,max=255"`
	URL          string          `json:"url"                    validate:"required,http_url"`
	RepoURL      string          `json:"repo_url,omitempty"     validate:"omitempty,http_url"`
	Author       *PersonRequest  `json:"author,omitempty"`
	Contributors []PersonRequest `json:"contributors,omitempty" validate:"max=100,dive"`
}

// CreateUserRequest defines the payload for POST /api/users.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
	Name  string `json:"name"  validate:"max=255"`
}

// RegisterRequest defines the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Name     string `json:"name"     validate:"max=255"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by successful register and login requests.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// PersonResponse is an author or contributor in package responses.
type PersonResponse struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// TagResponse is a tag attached to a package.
type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// PackageResponse is the representation of a package.
type PackageResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	RepoURL      string           `json:"repo_url,omitempty"`
	Author       *PersonResponse  `json:"author,omitempty"`
	Contributors []PersonResponse `json:"contributors"`
	Tags         []TagResponse    `json:"tags"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// UserResponse is the representation of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationResponse is the representation of an in-app notification.
type NotificationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	PackageID uuid.UUID       `json:"package_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
}

// URLCheckQueuedResponse is returned when a single check is queued.
type URLCheckQueuedResponse struct {
	Status string `json:"status"`
}

// URLChecksRequestedResponse is returned by the catalog-wide sweep.
type URLChecksRequestedResponse struct {
	Requested int `json:"requested"`
}

func (r CreatePackageRequest) toInput() service.CreatePackageInput {
	in := service.CreatePackageInput{
		Name:    r.Name,
		URL:     r.URL,
		RepoURL: r.RepoURL,
	}
	if r.Author != nil {
		p := r.Author.toInput()
		in.Author = &p
	}
	for _, c := range r.Contributors {
		in.Contributors = append(in.Contributors, c.toInput())
	}
	return in
}

func (p PersonRequest) toInput() service.PersonInput {
	in := service.PersonInput{Name: p.Name, UserID: p.UserID}
	if p.ID != nil {
		in.ID = *p.ID
	}
	return in
}

func packageToResponse(pkg *domain.Package) PackageResponse {
	resp := PackageResponse{
		ID:           pkg.ID,
		Name:         pkg.Name,
		URL:          pkg.URL,
		RepoURL:      pkg.RepoURL,
		Contributors: make([]PersonResponse, 0, len(pkg.Contributors)),
		Tags:         make([]TagResponse, 0, len(pkg.Tags)),
		CreatedAt:    pkg.CreatedAt,
		UpdatedAt:    pkg.UpdatedAt,
	}
	if pkg.Author != nil {
		resp.Author = &PersonResponse{ID: pkg.Author.ID, Name: pkg.Author.Name, UserID: pkg.Author.UserID}
	}
	for _, c := range pkg.Contributors {
		resp.Contributors = append(resp.Contributors, PersonResponse{ID: c.ID, Name: c.Name, UserID: c.UserID})
	}
	for _, t := range pkg.Tags {
		resp.Tags = append(resp.Tags, TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return resp
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func notificationToResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		PackageID: n.PackageID,
		Payload:   n.Payload,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
