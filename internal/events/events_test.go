package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkPayload struct {
	PackageID uuid.UUID `json:"package_id"`
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	packageID := uuid.New()
	event, err := NewTaskRequestEvent("check_package_urls", checkPayload{PackageID: packageID})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "check_package_urls", event.Type)
	assert.Equal(t, time.UTC, event.CreatedAt.Location())
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded checkPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, packageID, decoded.PackageID)
}

func TestNewTaskRequestEvent_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("", checkPayload{})
	assert.ErrorIs(t, err, ErrEmptyEventType)

	_, err = NewTaskRequestEvent("bad", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal bad payload")
}

func TestUnmarshalPayload_Invalid(t *testing.T) {
	t.Parallel()

	event := &TaskRequestEvent{Type: "check_package_urls", Payload: []byte(`{"package_id":`)}
	var decoded checkPayload
	assert.ErrorContains(t, event.UnmarshalPayload(&decoded), "invalid check_package_urls payload")
}

func TestHandlerFunc(t *testing.T) {
	t.Parallel()

	var got *TaskRequestEvent
	h := HandlerFunc(func(_ context.Context, e *TaskRequestEvent) error {
		got = e
		return nil
	})

	event := &TaskRequestEvent{ID: uuid.New(), Type: "x"}
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
