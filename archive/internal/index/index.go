// Package index provides FlatBuffers index loading for containers.
//
// Entries are stored in write order; the index does not sort or deduplicate
// keys.
package index

import (
	"errors"
	"fmt"
	"iter"

	"github.com/meigma/dbpack/archive/internal/fb"
)

// Index provides access to container entries.
type Index struct {
	data []byte
	root *fb.Index
}

// Load parses a FlatBuffers-encoded index.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load.
func Load(data []byte) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("dbpack: failed to parse index: %v", r)
		}
	}()
	if len(data) == 0 {
		return nil, errors.New("dbpack: empty index data")
	}

	root := fb.GetRootAsIndex(data, 0)
	// Touch every field so a corrupt buffer fails here rather than on
	// first access.
	_ = root.Version()
	_ = root.DataSize()
	_ = root.DataHashBytes()
	var e fb.Entry
	for i := range root.EntriesLength() {
		if !root.Entries(&e, i) {
			return nil, fmt.Errorf("dbpack: index entry %d unreadable", i)
		}
		_ = e.Group()
		_ = e.Instance()
		_ = e.Type()
		_ = e.Offset()
		_ = e.Size()
		_ = e.MemSize()
		_ = e.Compression()
	}

	return &Index{
		data: data,
		root: root,
	}, nil
}

// Version returns the format version recorded in the index.
func (idx *Index) Version() uint32 {
	return idx.root.Version()
}

// DataSize returns the size of the data region in bytes.
func (idx *Index) DataSize() uint64 {
	return idx.root.DataSize()
}

// DataHash returns the digest of the data region.
// The returned slice aliases the index buffer and must be treated as immutable.
func (idx *Index) DataHash() []byte {
	return idx.root.DataHashBytes()
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return idx.root.EntriesLength()
}

// Entries returns an iterator over all entries in write order.
//
// The yielded entry is reused between iterations.
func (idx *Index) Entries() iter.Seq2[int, *fb.Entry] {
	return func(yield func(int, *fb.Entry) bool) {
		var e fb.Entry
		for i := range idx.root.EntriesLength() {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !yield(i, &e) {
				return
			}
		}
	}
}
