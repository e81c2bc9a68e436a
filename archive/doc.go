//go:generate flatc --go --go-namespace fb -o internal schema/index.fbs

// Package archive writes and reads dbpack containers.
//
// A container is a single file:
//   - Header: 32 bytes, little-endian: magic "DBPK", format version, index
//     offset, index size, reserved
//   - Data region: entry payloads, back to back, in write order
//   - Index: FlatBuffers-encoded entry table plus the size and BLAKE3-256
//     digest of the data region
//
// Entries are identified by a [Key] of three 32-bit ids. The container does
// not enforce key uniqueness; [Reader.Lookup] returns the last entry written
// for a key.
//
// A [Writer] is a scoped resource: [Writer.Close] always writes the index and
// header, so a container whose producer failed part way is still readable
// and holds every entry added before the failure.
package archive
