package encoder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/internal/codec"
)

// memWriter collects written entries in memory.
type memWriter struct {
	keys  []archive.Key
	files map[archive.Key][]byte
	err   error
}

func (m *memWriter) WriteFile(key archive.Key, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.files == nil {
		m.files = make(map[archive.Key][]byte)
	}
	m.keys = append(m.keys, key)
	m.files[key] = bytes.Clone(data)
	return nil
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, base, ext string
	}{
		{"foo.bar", "foo", "bar"},
		{"foo", "foo", ""},
		{"creature.prop.yaml", "creature", "prop.yaml"},
		{".hidden", "", "hidden"},
		{"trailing.", "trailing", ""},
	}
	for _, tt := range tests {
		base, ext := SplitName(tt.name)
		assert.Equal(t, tt.base, base, tt.name)
		assert.Equal(t, tt.ext, ext, tt.name)
	}
}

func TestPropEncode(t *testing.T) {
	t.Parallel()

	h := hashid.NewRegistry()
	path := writeFile(t, filepath.Join(t.TempDir(), "creature.prop.yaml"), "name: Grox\nlegs: 4\ntags: [a, b]\n")

	var w memWriter
	ok, err := NewProp(h).Encode(context.Background(), path, &w, 7)
	require.NoError(t, err)
	require.True(t, ok)

	key := archive.Key{Group: 7, Instance: hashid.Sum("creature"), Type: hashid.TypeProp}
	require.Contains(t, w.files, key)

	var doc map[string]any
	require.NoError(t, codec.Unmarshal(w.files[key], &doc))
	assert.Equal(t, "Grox", doc["name"])
	assert.EqualValues(t, 4, doc["legs"])
}

func TestPropIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var w memWriter
	p := NewProp(hashid.NewRegistry())

	ok, err := p.Encode(context.Background(), writeFile(t, filepath.Join(dir, "notes.txt"), "x"), &w, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.prop.yaml"), 0o755))
	ok, err = p.Encode(context.Background(), filepath.Join(dir, "dir.prop.yaml"), &w, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, w.keys)
}

func TestPropInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "bad.prop.yaml"), "key: [unterminated\n")
	var w memWriter
	_, err := NewProp(hashid.NewRegistry()).Encode(context.Background(), path, &w, 1)
	require.Error(t, err)
	assert.Empty(t, w.keys)
}

func TestPropWriterError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "a.prop.yaml"), "x: 1\n")
	w := memWriter{err: errors.New("disk full")}
	_, err := NewProp(hashid.NewRegistry()).Encode(context.Background(), path, &w, 1)
	require.EqualError(t, err, "disk full")
}

func TestJSONCEncode(t *testing.T) {
	t.Parallel()

	path := writeFile(t, filepath.Join(t.TempDir(), "config.jsonc"), "{\n  // comment\n  \"a\": 1,\n}\n")
	var w memWriter
	ok, err := NewJSONC(hashid.NewRegistry()).Encode(context.Background(), path, &w, 3)
	require.NoError(t, err)
	require.True(t, ok)

	key := archive.Key{Group: 3, Instance: hashid.Sum("config"), Type: hashid.Sum("json")}
	require.Contains(t, w.files, key)
	assert.NotContains(t, string(w.files[key]), "comment")
	assert.Contains(t, string(w.files[key]), `"a": 1`)
}

func TestBundle(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "parts.bundle")
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.bin"), "beta")
	writeFile(t, filepath.Join(dir, "nested", "ignored.txt"), "x")

	b := NewBundle(hashid.NewRegistry())
	assert.True(t, b.CanEncodeDir(dir))

	var w memWriter
	ok, err := b.Encode(context.Background(), dir, &w, 9)
	require.NoError(t, err)
	require.True(t, ok)

	key := archive.Key{Group: 9, Instance: hashid.Sum("parts"), Type: hashid.Sum("bundle")}
	require.Contains(t, w.files, key)

	payload, err := io.ReadAll(lz4.NewReader(bytes.NewReader(w.files[key])))
	require.NoError(t, err)
	var files map[string][]byte
	require.NoError(t, codec.Unmarshal(payload, &files))
	assert.Equal(t, map[string][]byte{"a.txt": []byte("alpha"), "b.bin": []byte("beta")}, files)
}

func TestBundleRejectsNonBundles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	plain := filepath.Join(root, "plain")
	require.NoError(t, os.Mkdir(plain, 0o755))
	file := writeFile(t, filepath.Join(root, "file.bundle"), "not a dir")

	b := NewBundle(hashid.NewRegistry())
	assert.False(t, b.CanEncodeDir(plain))
	assert.False(t, b.CanEncodeDir(file))

	var w memWriter
	ok, err := b.Encode(context.Background(), file, &w, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultsOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, e := range Defaults(hashid.NewRegistry()) {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"prop", "jsonc", "bundle"}, names)
}

func TestEncodeHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, filepath.Join(t.TempDir(), "x.jsonc"), "{}")
	var w memWriter
	_, err := NewJSONC(hashid.NewRegistry()).Encode(ctx, path, &w, 1)
	require.ErrorIs(t, err, context.Canceled)
}
