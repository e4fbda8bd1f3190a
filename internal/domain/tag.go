package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Error tag attached to packages whose URLs could not be reached.
const (
	ErrorTagName = "404 error"
	ErrorTagSlug = "404-error"
)

// Tag validation errors
var (
	ErrEmptyTagName = errors.New("tag name cannot be empty")
	ErrEmptyTagSlug = errors.New("tag slug cannot be empty")
)

// Tag is a labeled category attachable to packages. Tags are unique by name.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a tag with the given name and slug. An empty slug is
// derived from the name.
func NewTag(name, slug string) (*Tag, error) {
	if slug == "" {
		slug = Slugify(name)
	}
	tag := &Tag{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// ErrorTag returns a new, unsaved instance of the shared "404 error" tag.
func ErrorTag() *Tag {
	return &Tag{
		ID:        uuid.New(),
		Name:      ErrorTagName,
		Slug:      ErrorTagSlug,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTagName
	}
	if strings.TrimSpace(t.Slug) == "" {
		return ErrEmptyTagSlug
	}
	return nil
}

// Slugify lowercases s and joins its words with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
