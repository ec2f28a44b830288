package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPop(t *testing.T) {
	ctx := context.Background()
	q := New[int](4)

	require.NoError(t, q.Push(ctx, 1))
	require.NoError(t, q.Push(ctx, 2))
	assert.Equal(t, 2, q.Len())

	v, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v, "FIFO order")

	v, ok = q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestTryPushFull(t *testing.T) {
	q := New[string](1)

	require.NoError(t, q.TryPush("a"))
	err := q.TryPush("b")
	assert.ErrorIs(t, err, ErrFull)
}

func TestPushAfterClose(t *testing.T) {
	q := New[int](4)
	q.Close()

	assert.ErrorIs(t, q.Push(context.Background(), 1), ErrClosed)
	assert.ErrorIs(t, q.TryPush(1), ErrClosed)
}

func TestPopDrainsAfterClose(t *testing.T) {
	ctx := context.Background()
	q := New[int](4)
	require.NoError(t, q.Push(ctx, 1))
	require.NoError(t, q.Push(ctx, 2))
	q.Close()

	v, ok := q.Pop(ctx)
	require.True(t, ok, "queued items survive the close")
	assert.Equal(t, 1, v)

	v, ok = q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = q.Pop(ctx)
	assert.False(t, ok, "drained and closed")
}

func TestPopUnblocksOnClose(t *testing.T) {
	q := New[int](1)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Close")
	}
}

func TestPopRespectsContext(t *testing.T) {
	q := New[int](1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := q.Pop(ctx)
	assert.False(t, ok)
}

func TestCloseIdempotent(t *testing.T) {
	q := New[int](1)
	q.Close()
	q.Close()
	assert.True(t, q.Closed())
}

func TestMinimumCapacity(t *testing.T) {
	q := New[int](0)
	assert.Equal(t, 1, q.Cap())
}
