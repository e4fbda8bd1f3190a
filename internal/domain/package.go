package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Package validation errors
var (
	ErrEmptyPackageID   = errors.New("package ID cannot be empty")
	ErrEmptyPackageName = errors.New("package name cannot be empty")
	ErrEmptyPackageURL  = errors.New("package URL cannot be empty")
)

// Author is the credited author of a package. An author may or may not have
// a registered user account.
type Author struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// IsUser reports whether the author is linked to a registered user.
func (a *Author) IsUser() bool {
	return a != nil && a.UserID != nil && *a.UserID != uuid.Nil
}

// Contributor is a person credited on a package, optionally linked to a
// platform user account.
type Contributor struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// HasUser reports whether the contributor is linked to a registered user.
func (c Contributor) HasUser() bool {
	return c.UserID != nil && *c.UserID != uuid.Nil
}

// Package is a catalog entry representing a software package with its
// published URLs. Author, Contributors and Tags are only populated when the
// package is loaded with its relations.
type Package struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	RepoURL      string        `json:"repo_url,omitempty"`
	AuthorID     *uuid.UUID    `json:"author_id,omitempty"`
	Author       *Author       `json:"author,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
	Tags         []Tag         `json:"tags,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewPackage creates a new Package with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewPackage(name, pkgURL, repoURL string) (*Package, error) {
	now := time.Now().UTC()
	pkg := &Package{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		URL:       strings.TrimSpace(pkgURL),
		RepoURL:   strings.TrimSpace(repoURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	return pkg, nil
}

// Validate checks if the Package has valid data.
func (p *Package) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPackageID
	}
	if p.Name == "" {
		return ErrEmptyPackageName
	}
	if p.URL == "" {
		return ErrEmptyPackageURL
	}
	if err := validateHTTPURL(p.URL); err != nil {
		return err
	}
	if p.RepoURL != "" {
		if err := validateHTTPURL(p.RepoURL); err != nil {
			return err
		}
	}
	return nil
}

// CheckableURLs returns the package's non-empty URLs in check order:
// the package URL first, then the legacy repository URL.
func (p *Package) CheckableURLs() []string {
	urls := make([]string, 0, 2)
	for _, u := range []string{p.URL, p.RepoURL} {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// HasTag reports whether a tag with the given name is attached.
func (p *Package) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}
