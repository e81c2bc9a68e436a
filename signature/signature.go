// Package signature provides the provenance payloads embedded in packed
// containers.
//
// A signature is a small reserved entry that tells the game which patch or
// feature set a package was built against. The packer streams the payload
// of the configured [Kind] into the container unless the source tree
// already carries one.
package signature

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Reserved key fields of the signature entry.
const (
	Group uint32 = 0x40404000
	Type  uint32 = 0x00B1B104
)

//go:embed payloads/*.prop
var payloads embed.FS

// Source provides a signature payload.
type Source interface {
	// FileName is the payload's file name; its hash is the entry instance.
	FileName() string

	// Open returns a stream over the payload. The caller closes it.
	Open() (io.ReadCloser, error)
}

// Kind selects a built-in signature.
type Kind uint8

const (
	None Kind = iota
	Patch51
	BotParts
)

var kinds = []struct {
	kind     Kind
	name     string
	fileName string
}{
	{None, "none", ""},
	{Patch51, "patch51", "ga_patch51.prop"},
	{BotParts, "bot_parts", "bot_parts.prop"},
}

// String returns the name accepted by ParseKind.
func (k Kind) String() string {
	for _, e := range kinds {
		if e.kind == k {
			return e.name
		}
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseKind parses a kind name. The empty string is None.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return None, nil
	}
	for _, e := range kinds {
		if e.name == name {
			return e.kind, nil
		}
	}
	return None, fmt.Errorf("unknown signature kind: %q", name)
}

// Source returns the payload source for k, or nil for None.
func (k Kind) Source() Source {
	for _, e := range kinds {
		if e.kind == k && e.fileName != "" {
			return embedded(e.fileName)
		}
	}
	return nil
}

type embedded string

func (e embedded) FileName() string { return string(e) }

func (e embedded) Open() (io.ReadCloser, error) {
	f, err := payloads.Open("payloads/" + string(e))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FileSource returns a Source that streams the file at path. The entry
// instance is the hash of the file's base name.
func FileSource(path string) Source {
	return fileSource(path)
}

type fileSource string

func (f fileSource) FileName() string { return filepath.Base(string(f)) }

func (f fileSource) Open() (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return nil, err
	}
	return file, nil
}
