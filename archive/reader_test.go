package archive

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileDecompresses(t *testing.T) {
	t.Parallel()

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			w, path := newTestWriter(t, WithCompression(c))
			payload := bytes.Repeat([]byte("names and more names\n"), 200)
			key := Key{Group: 9, Instance: 8, Type: 7}
			require.NoError(t, w.WriteFile(key, payload))
			require.NoError(t, w.Close())

			r := openTestReader(t, path)
			e, ok := r.Lookup(key)
			require.True(t, ok)
			assert.Equal(t, c, e.Compression)

			got, err := r.ReadFile(e)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	t.Parallel()

	e := Entry{Key: Key{Group: 1}, Size: 3, MemSize: 4, Compression: CompressionNone}
	_, err := decompress(e, []byte("abc"))
	assert.ErrorIs(t, err, ErrDecompression)

	e = Entry{Key: Key{Group: 1}, Size: 3, MemSize: 3, Compression: Compression(99)}
	_, err = decompress(e, []byte("abc"))
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestDecompressTruncatedZstd(t *testing.T) {
	t.Parallel()

	w, path := newTestWriter(t, WithCompression(CompressionZstd))
	payload := bytes.Repeat([]byte("zstd payload "), 300)
	key := Key{Group: 1, Instance: 1, Type: 1}
	require.NoError(t, w.WriteFile(key, payload))
	require.NoError(t, w.Close())

	r := openTestReader(t, path)
	e, ok := r.Lookup(key)
	require.True(t, ok)
	e.MemSize++

	_, err := r.ReadFile(e)
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestOpenCorruptIndex(t *testing.T) {
	t.Parallel()

	w, path := newTestWriter(t, WithCompression(CompressionNone))
	for i := range uint32(4) {
		require.NoError(t, w.WriteFile(Key{Group: 1, Instance: i, Type: 2}, []byte("payload")))
	}
	require.NoError(t, w.Close())

	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	indexOffset := binary.LittleEndian.Uint64(orig[8:16])
	indexSize := binary.LittleEndian.Uint64(orig[16:24])
	require.Equal(t, uint64(len(orig)), indexOffset+indexSize)

	dir := t.TempDir()
	for _, mask := range []byte{0xFF, 0x80, 0x01} {
		for pos := indexOffset; pos < indexOffset+indexSize; pos++ {
			data := bytes.Clone(orig)
			data[pos] ^= mask
			corrupt := filepath.Join(dir, "corrupt.package")
			require.NoError(t, os.WriteFile(corrupt, data, 0o644))

			assert.NotPanics(t, func() {
				r, err := Open(corrupt)
				if err != nil {
					return
				}
				for _, e := range r.Entries() {
					_, _ = r.ReadFile(e) //nolint:errcheck // only panics matter here
				}
				r.Close()
			}, "byte %d mask %#x", pos, mask)
		}
	}
}
