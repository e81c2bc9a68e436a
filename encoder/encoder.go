// Package encoder defines content encoders: components that recognize a
// source format and write it into a container in its packed form, bypassing
// the verbatim copy the packer uses for everything else.
//
// The packer tries encoders in slice order and stops at the first one that
// claims an item, so the order of [Defaults] is a priority list with the
// most common formats first.
package encoder

import (
	"context"
	"strings"

	"github.com/meigma/dbpack/archive"
)

// Writer receives encoded entries. *archive.Writer implements it.
type Writer interface {
	WriteFile(key archive.Key, data []byte) error
}

// Hasher derives ids from names. *hashid.Registry implements it.
type Hasher interface {
	Hash(name string) uint32
}

// Encoder converts a recognized source item into container entries.
type Encoder interface {
	// Name identifies the encoder in logs and errors.
	Name() string

	// CanEncodeDir reports whether the directory at path is a single
	// encodable unit rather than a wrapper around a nested payload file.
	CanEncodeDir(path string) bool

	// Encode writes the item at path into w under the given group.
	// It returns false, without writing anything, when the item is not in
	// a format the encoder handles.
	Encode(ctx context.Context, path string, w Writer, group uint32) (bool, error)
}

// Defaults returns the built-in encoders in priority order.
func Defaults(h Hasher) []Encoder {
	return []Encoder{
		NewProp(h),
		NewJSONC(h),
		NewBundle(h),
	}
}

// SplitName splits name at its first '.' into base name and extension.
// The extension is empty when name has no '.'.
func SplitName(name string) (base, ext string) {
	base, ext, _ = strings.Cut(name, ".")
	return base, ext
}
