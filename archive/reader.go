package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/meigma/dbpack/archive/internal/index"
	"github.com/meigma/dbpack/internal/sizing"
)

// maxIndexSize bounds the index read by Open.
const maxIndexSize = 1 << 30

// Reader provides access to the entries of a finalized container.
//
// ReadRaw returns stored bytes as written; ReadFile also expands compressed
// payloads.
type Reader struct {
	f        *os.File
	entries  []Entry
	dataSize uint64
	dataHash []byte
}

// Open opens the container at path and loads its index.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, err
	}
	r, err := newReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return r, nil
}

func newReader(f *os.File) (*Reader, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidContainer, err)
	}
	if !bytes.Equal(header[0:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidContainer, header[0:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidContainer, v)
	}
	indexOffset := binary.LittleEndian.Uint64(header[8:16])
	indexSize := binary.LittleEndian.Uint64(header[16:24])
	if indexOffset < HeaderSize || indexSize == 0 || indexSize > maxIndexSize {
		return nil, fmt.Errorf("%w: index at %d size %d", ErrInvalidContainer, indexOffset, indexSize)
	}

	off, err := sizing.ToInt64(indexOffset, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	indexData := make([]byte, indexSize)
	if _, err := f.ReadAt(indexData, off); err != nil {
		return nil, fmt.Errorf("%w: read index: %w", ErrInvalidContainer, err)
	}
	idx, err := index.Load(indexData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContainer, err)
	}
	if idx.Version() != FormatVersion {
		return nil, fmt.Errorf("%w: index version %d", ErrInvalidContainer, idx.Version())
	}
	if HeaderSize+idx.DataSize() != indexOffset {
		return nil, fmt.Errorf("%w: data size %d does not match index offset %d", ErrInvalidContainer, idx.DataSize(), indexOffset)
	}

	entries := make([]Entry, 0, idx.Len())
	for _, e := range idx.Entries() {
		entries = append(entries, entryFromFlatBuffers(e))
	}

	return &Reader{
		f:        f,
		entries:  entries,
		dataSize: idx.DataSize(),
		dataHash: bytes.Clone(idx.DataHash()),
	}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Entries returns all entries in write order.
func (r *Reader) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Len returns the number of entries.
func (r *Reader) Len() int {
	return len(r.entries)
}

// Lookup returns the last entry written under key.
func (r *Reader) Lookup(key Key) (Entry, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Key == key {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// ReadRaw returns the stored bytes of e.
func (r *Reader) ReadRaw(e Entry) ([]byte, error) {
	end, ok := sizing.AddUint64(e.Offset, e.Size)
	if !ok || e.Offset < HeaderSize || end > HeaderSize+r.dataSize {
		return nil, fmt.Errorf("%w: %s outside data region", ErrInvalidEntry, e.Key)
	}
	size, err := sizing.ToInt(e.Size, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	off, err := sizing.ToInt64(e.Offset, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := r.f.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Key, err)
	}
	return buf, nil
}

// DataSize returns the size of the data region.
func (r *Reader) DataSize() uint64 {
	return r.dataSize
}

// DataDigest returns the BLAKE3-256 digest of the data region recorded in
// the index.
func (r *Reader) DataDigest() []byte {
	return bytes.Clone(r.dataHash)
}

// Verify recomputes the digest of the data region and compares it with the
// one recorded in the index.
func (r *Reader) Verify() error {
	size, err := sizing.ToInt64(r.dataSize, ErrSizeOverflow)
	if err != nil {
		return err
	}
	h := blake3.New()
	if _, err := io.Copy(h, io.NewSectionReader(r.f, HeaderSize, size)); err != nil {
		return fmt.Errorf("hash data region: %w", err)
	}
	if !bytes.Equal(h.Sum(nil), r.dataHash) {
		return ErrDigestMismatch
	}
	return nil
}
