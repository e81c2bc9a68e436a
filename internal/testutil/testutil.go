// Package testutil provides helpers for building source trees and reading
// containers in tests.
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/dbpack/archive"
)

// WriteTree creates files under root. Keys are slash-separated paths
// relative to root; a key ending in "/" creates an empty directory.
func WriteTree(tb testing.TB, root string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(tb, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(tb, os.WriteFile(p, []byte(content), 0o644))
	}
}

// Symlink creates a symlink at root/name pointing to target, skipping the
// test when the platform does not allow it.
func Symlink(tb testing.TB, root, target, name string) {
	tb.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
	if err := os.Symlink(target, p); err != nil {
		tb.Skipf("symlinks unavailable: %v", err)
	}
}

// Container is a fully read container.
type Container struct {
	Entries []archive.Entry
	data    map[archive.Key][]byte
}

// ReadContainer opens the container at path and reads every entry's stored
// bytes. Later entries with a duplicate key replace earlier ones in Data.
func ReadContainer(tb testing.TB, path string) *Container {
	tb.Helper()
	r, err := archive.Open(path)
	require.NoError(tb, err)
	defer r.Close()

	c := &Container{Entries: r.Entries(), data: make(map[archive.Key][]byte)}
	for _, e := range c.Entries {
		raw, err := r.ReadRaw(e)
		require.NoError(tb, err)
		c.data[e.Key] = raw
	}
	return c
}

// Data returns the stored bytes for key.
func (c *Container) Data(key archive.Key) ([]byte, bool) {
	b, ok := c.data[key]
	return b, ok
}

// Has reports whether key is present.
func (c *Container) Has(key archive.Key) bool {
	_, ok := c.data[key]
	return ok
}

// Keys returns the keys in write order.
func (c *Container) Keys() []archive.Key {
	keys := make([]archive.Key, len(c.Entries))
	for i, e := range c.Entries {
		keys[i] = e.Key
	}
	return keys
}

// MemWriter records entries in memory. It satisfies the writer interfaces
// taken by encoders and the debug recorder.
type MemWriter struct {
	mu      sync.Mutex
	Keys    []archive.Key
	Payload map[archive.Key][]byte
	Err     error
}

// NewMemWriter returns an empty MemWriter.
func NewMemWriter() *MemWriter {
	return &MemWriter{Payload: make(map[archive.Key][]byte)}
}

// WriteFile records data under key, or returns Err when set.
func (w *MemWriter) WriteFile(key archive.Key, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Keys = append(w.Keys, key)
	w.Payload[key] = append([]byte(nil), data...)
	return nil
}

// StringSource is an in-memory signature source.
type StringSource struct {
	Name    string
	Content string
	OpenErr error
}

// FileName returns Name.
func (s StringSource) FileName() string { return s.Name }

// Open returns a reader over Content, or OpenErr when set.
func (s StringSource) Open() (io.ReadCloser, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return io.NopCloser(strings.NewReader(s.Content)), nil
}
