package dbpack

import (
	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/internal/debuginfo"
	"github.com/meigma/dbpack/signature"
)

// Key identifies an entry in a container.
type Key = archive.Key

// DebugEntry describes one verbatim file recorded as debug information.
type DebugEntry = debuginfo.Entry

// Reserved keys.
var (
	// NamesKey holds the table mapping hashed names back to text.
	NamesKey = Key{Group: 0x9C9059AE, Instance: 0xCC2F616F, Type: 0x2B6CAB5F}

	// DebugInfoKey holds the debug information of a run.
	DebugInfoKey = debuginfo.Key
)

// SignatureGroup is the group id of provenance signatures. A source folder
// hashing to it means the tree already carries a signature.
const SignatureGroup = signature.Group
