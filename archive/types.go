package archive

import (
	"fmt"

	"github.com/meigma/dbpack/archive/internal/fb"
)

// Key identifies an entry in a container.
type Key struct {
	Group    uint32
	Instance uint32
	Type     uint32
}

// String formats the key as group!instance.type in hex.
func (k Key) String() string {
	return fmt.Sprintf("0x%08x!0x%08x.0x%08x", k.Group, k.Instance, k.Type)
}

// Entry describes one payload in the data region.
type Entry struct {
	Key Key

	// Offset is the absolute file offset of the payload.
	Offset uint64

	// Size is the number of bytes stored in the container.
	Size uint64

	// MemSize is the payload size after decompression.
	// Equal to Size for uncompressed entries.
	MemSize uint64

	// Compression is the algorithm used to store the payload.
	Compression Compression
}

// Compression identifies the algorithm used to store an entry.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseCompression parses the name returned by Compression.String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

func entryFromFlatBuffers(e *fb.Entry) Entry {
	return Entry{
		Key: Key{
			Group:    e.Group(),
			Instance: e.Instance(),
			Type:     e.Type(),
		},
		Offset:      e.Offset(),
		Size:        e.Size(),
		MemSize:     e.MemSize(),
		Compression: Compression(e.Compression()),
	}
}
