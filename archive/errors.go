package archive

import "errors"

// Sentinel errors for container operations.
var (
	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("dbpack: writer closed")

	// ErrInvalidContainer is returned when a file is not a readable container.
	ErrInvalidContainer = errors.New("dbpack: invalid container")

	// ErrInvalidEntry is returned when an entry does not lie inside the
	// data region written so far.
	ErrInvalidEntry = errors.New("dbpack: invalid entry")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("dbpack: size overflow")

	// ErrDigestMismatch is returned when the data region does not match the
	// digest recorded in the index.
	ErrDigestMismatch = errors.New("dbpack: data digest mismatch")

	// ErrDecompression is returned when a stored payload does not expand to
	// its recorded size.
	ErrDecompression = errors.New("dbpack: decompression failed")
)
