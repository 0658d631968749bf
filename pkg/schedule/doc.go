// Package schedule defines the producer ("master") schedule and block
// signing authority data model, its canonical binary encoding and its
// validity rules.
//
// Fields are encoded in declaration order, sequences as a varuint32 length
// followed by the elements and variants as a varuint32 tag followed by the
// variant payload. Names are 8 byte little-endian integers and public keys
// use their tagged encoding from the cryptography package.
package schedule
