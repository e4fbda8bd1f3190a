package task

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	require.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.tasks))
	assert.False(t, queue.closed)
	assert.Zero(t, queue.Len())
}

func TestNewTaskQueue_NegativeSize(t *testing.T) {
	queue := NewTaskQueue(-1, setupTestLogger())
	assert.Equal(t, 0, cap(queue.tasks))
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(CreateMockTaskWithPayload("one")))
	require.NoError(t, queue.Enqueue(CreateMockTaskWithPayload("two")))
	assert.Equal(t, 2, queue.Len())

	third := CreateMockTaskWithPayload("three")
	err := queue.Enqueue(third)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)

	<-queue.tasks

	assert.NoError(t, queue.Enqueue(third))
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	task := CreateMockTaskWithPayload("queued")
	require.NoError(t, queue.Enqueue(task))

	queue.Close()
	assert.True(t, queue.closed)

	err := queue.Enqueue(CreateMockTaskWithPayload("late"))
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Buffered tasks survive closing
	received := <-queue.GetChannel()
	assert.Equal(t, task.ID(), received.ID())

	select {
	case _, ok := <-queue.GetChannel():
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for closed channel read")
	}
}

func TestClose_Twice(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())

	queue.Close()
	assert.NotPanics(t, queue.Close)
}

func TestGetChannel(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	task := CreateMockTaskWithPayload("read me")
	require.NoError(t, queue.Enqueue(task))

	receivedTask := <-queue.GetChannel()
	assert.Equal(t, task.ID(), receivedTask.ID())
	assert.Equal(t, task.Type(), receivedTask.Type())
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	queue := NewTaskQueue(100, setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				err := queue.Enqueue(CreateMockTaskWithPayload("concurrent"))
				if err != nil {
					assert.ErrorIs(t, err, ErrQueueClosed)
				}
			}
		}()
	}

	queue.Close()
	wg.Wait()

	count := 0
	for range queue.GetChannel() {
		count++
	}
	assert.LessOrEqual(t, count, 50)
}
