package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the kind of notification sent to a user.
type NotificationType string

// Known notification types
const (
	NotificationInvalidPackageURL NotificationType = "invalid_package_url"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	return t == NotificationInvalidPackageURL
}

// InvalidPackageURLPayload is the body of an invalid_package_url notification.
type InvalidPackageURLPayload struct {
	PackageName string `json:"package_name"`
	URL         string `json:"url"`
	RepoURL     string `json:"repo_url,omitempty"`
}

// Notification is an in-app message addressed to a user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	PackageID uuid.UUID        `json:"package_id"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}

// NewNotification builds a notification of type t about pkg for userID.
func NewNotification(userID uuid.UUID, t NotificationType, pkg *Package) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	if !t.IsValid() {
		return nil, ErrInvalidNotificationType
	}
	if pkg == nil || pkg.ID == uuid.Nil {
		return nil, ErrEmptyPackageID
	}

	payload, err := json.Marshal(InvalidPackageURLPayload{
		PackageName: pkg.Name,
		URL:         pkg.URL,
		RepoURL:     pkg.RepoURL,
	})
	if err != nil {
		return nil, err
	}

	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		PackageID: pkg.ID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}
