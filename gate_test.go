package dbpack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	t.Parallel()

	t.Run("open gate does not block", func(t *testing.T) {
		t.Parallel()

		var g gate
		require.NoError(t, g.wait(context.Background()))
		assert.False(t, g.paused())
	})

	t.Run("release wakes waiter", func(t *testing.T) {
		t.Parallel()

		var g gate
		g.pause()
		g.pause() // idempotent

		done := make(chan error, 1)
		go func() { done <- g.wait(context.Background()) }()

		require.Eventually(t, g.blocked, time.Second, time.Millisecond)
		g.release()
		require.NoError(t, <-done)
		assert.False(t, g.blocked())

		g.release() // no-op when open
		require.NoError(t, g.wait(context.Background()))
	})

	t.Run("context ends wait", func(t *testing.T) {
		t.Parallel()

		var g gate
		g.pause()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, g.wait(ctx), context.DeadlineExceeded)
		assert.True(t, g.paused())
	})
}
