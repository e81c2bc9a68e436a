package ioutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkRecorder records the size of every Write call.
type chunkRecorder struct {
	bytes.Buffer
	sizes []int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.Buffer.Write(p)
}

func TestCopyWithContext_Chunks(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte("x"), 20)
	dst := &chunkRecorder{}

	n, err := CopyWithContext(context.Background(), dst, bytes.NewReader(src), make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, uint64(20), n)
	assert.Equal(t, []int{8, 8, 4}, dst.sizes)
	assert.Equal(t, src, dst.Bytes())
}

func TestCopyWithContext_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := CopyWithContext(ctx, io.Discard, bytes.NewReader([]byte("abc")), make([]byte, 8))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestCopyWithContext_EmptyBuffer(t *testing.T) {
	t.Parallel()

	_, err := CopyWithContext(context.Background(), io.Discard, bytes.NewReader(nil), nil)
	require.ErrorIs(t, err, io.ErrShortBuffer)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCopyWithContext_WriteError(t *testing.T) {
	t.Parallel()

	_, err := CopyWithContext(context.Background(), failingWriter{}, bytes.NewReader([]byte("abc")), make([]byte, 8))
	require.EqualError(t, err, "disk full")
}

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf}
	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = cw.Write([]byte(" world"))
	require.NoError(t, err)

	assert.Equal(t, uint64(11), cw.N)
	assert.Equal(t, "hello world", buf.String())
}

func TestCountingWriter_Overflow(t *testing.T) {
	t.Parallel()

	cw := &CountingWriter{W: io.Discard, N: ^uint64(0) - 1}
	_, err := cw.Write([]byte("ab"))
	require.ErrorIs(t, err, ErrOverflow)
}
