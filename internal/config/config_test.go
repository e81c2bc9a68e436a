package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/signature"
)

const sample = `
concurrency: 4
defaults:
  signature: patch51
  compression: zstd
projects:
  - name: mymod
    input: src/MyMod
  - name: other
    input: /abs/Other
    output: /abs/Other.package
    signature: none
    debug: true
`

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Concurrency)
	require.Len(t, cfg.Projects, 2)

	mymod := cfg.Projects[0]
	assert.Equal(t, "src/MyMod.package", mymod.Output)
	assert.Equal(t, signature.Patch51, mymod.SignatureKind())
	assert.Equal(t, archive.CompressionZstd, mymod.CompressionAlgorithm())
	assert.False(t, mymod.Debug)

	other := cfg.Projects[1]
	assert.Equal(t, signature.None, other.SignatureKind())
	assert.True(t, other.Debug)
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("projects:\n  - name: a\n    input: a\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, signature.None, cfg.Projects[0].SignatureKind())
	assert.Equal(t, archive.CompressionNone, cfg.Projects[0].CompressionAlgorithm())
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "projects: [", ""},
		{"zero concurrency", "concurrency: 0\n", "concurrency"},
		{"missing name", "projects:\n  - input: a\n", "name is required"},
		{"missing input", "projects:\n  - name: a\n", "input is required"},
		{"duplicate", "projects:\n  - {name: a, input: a}\n  - {name: a, input: b}\n", "duplicate"},
		{"bad signature", "projects:\n  - {name: a, input: a, signature: nope}\n", "unknown signature kind"},
		{"bad compression", "projects:\n  - {name: a, input: a, compression: gzip}\n", "unknown compression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileResolvesPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "dbpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	p, ok := cfg.Project("mymod")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "src", "MyMod"), p.Input)
	assert.Equal(t, filepath.Join(dir, "src", "MyMod.package"), p.Output)

	p, ok = cfg.Project("other")
	require.True(t, ok)
	assert.Equal(t, "/abs/Other", p.Input)

	_, ok = cfg.Project("missing")
	assert.False(t, ok)

	assert.Len(t, cfg.Resolved(), 2)
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	t.Setenv(EnvVar, "")
	_, err := Load()
	require.ErrorIs(t, err, ErrNoConfig)

	t.Setenv(EnvVar, path)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Projects, 2)
}
