// Package hashid derives the 32-bit identifiers used as container keys.
//
// Names hash with 32-bit FNV-1 over their lower-cased bytes, so "Creature"
// and "creature" share an id. A name written as a hex literal ("0x40404000")
// is its own id. A [Registry] layers aliases on top of [Sum] and can record
// every name it hashes, which lets a packed container carry a table for
// mapping ids back to names.
package hashid
