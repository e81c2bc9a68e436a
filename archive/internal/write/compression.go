// Package write holds the predicates that decide whether a buffered entry is
// stored compressed.
package write

import (
	"github.com/meigma/dbpack/hashid"
)

// SkipCompressionFunc returns true when an entry should be stored
// uncompressed. It is called once per buffered entry and should be
// inexpensive.
type SkipCompressionFunc func(typeID uint32, size int) bool

// DefaultSkipCompression returns a SkipCompressionFunc that skips small
// payloads and types whose source formats are already compressed.
func DefaultSkipCompression(minSize int) SkipCompressionFunc {
	return func(typeID uint32, size int) bool {
		if minSize > 0 && size < minSize {
			return true
		}
		_, ok := compressedTypes[typeID]
		return ok
	}
}

// ShouldSkip checks if any predicate returns true for the given entry.
func ShouldSkip(typeID uint32, size int, predicates []SkipCompressionFunc) bool {
	for _, fn := range predicates {
		if fn == nil {
			continue
		}
		if fn(typeID, size) {
			return true
		}
	}
	return false
}

var compressedTypes = func() map[uint32]struct{} {
	exts := []string{
		"7z", "aac", "avif", "bz2", "flac", "gif", "gz", "jpeg", "jpg",
		"mp3", "mp4", "ogg", "png", "rar", "snr", "webm", "webp", "xz",
		"zip", "zst",
	}
	m := make(map[uint32]struct{}, len(exts))
	for _, ext := range exts {
		m[hashid.Sum(ext)] = struct{}{}
	}
	return m
}()
