package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyEventType is returned when an event is created without a type.
	ErrEmptyEventType = errors.New("event type cannot be empty")

	// ErrNoHandlers is returned by an emitter that has nobody to deliver to.
	ErrNoHandlers = errors.New("no event handlers registered")
)

// TaskRequestEvent asks for a background task of the given type.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskRequestEvent serializes payload and wraps it in a new event.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	if eventType == "" {
		return nil, ErrEmptyEventType
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", e.Type, err)
	}
	return nil
}

// EventHandler reacts to emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// HandlerFunc lets an ordinary function act as an EventHandler.
type HandlerFunc func(ctx context.Context, event *TaskRequestEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to whoever handles them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
