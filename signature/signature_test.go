package signature

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source) []byte {
	t.Helper()
	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{None, Patch51, BotParts} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, None, got)

	_, err = ParseKind("galactic")
	require.Error(t, err)
	assert.Equal(t, "unknown(9)", Kind(9).String())
}

func TestBuiltinSources(t *testing.T) {
	t.Parallel()

	assert.Nil(t, None.Source())

	for _, k := range []Kind{Patch51, BotParts} {
		src := k.Source()
		require.NotNil(t, src, k.String())
		assert.Equal(t, filepath.Ext(src.FileName()), ".prop")
		assert.NotEmpty(t, readAll(t, src), k.String())
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.prop")
	require.NoError(t, os.WriteFile(path, []byte("custom signature"), 0o644))

	src := FileSource(path)
	assert.Equal(t, "custom.prop", src.FileName())
	assert.Equal(t, "custom signature", string(readAll(t, src)))

	_, err := FileSource(filepath.Join(t.TempDir(), "missing")).Open()
	require.ErrorIs(t, err, os.ErrNotExist)
}
