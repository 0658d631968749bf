package wire

import (
	"encoding/binary"
	"math"
)

// Encoder appends the canonical little-endian encoding of values to an
// in-memory buffer. Writes cannot fail.
type Encoder struct {
	buf []byte
}

func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) WriteUint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteUint8(1)
		return
	}
	e.WriteUint8(0)
}

func (e *Encoder) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *Encoder) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// WriteVarUint32 writes v as LEB128, used for length prefixes and
// variant tags.
func (e *Encoder) WriteVarUint32(v uint32) {
	var b [binary.MaxVarintLen32]byte
	n := binary.PutUvarint(b[:], uint64(v))
	e.buf = append(e.buf, b[:n]...)
}

// WriteLength writes a sequence length prefix.
func (e *Encoder) WriteLength(n int) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		panic("wire: sequence length out of range")
	}
	e.WriteVarUint32(uint32(n))
}

// WriteRaw appends b without a length prefix, for fixed-width fields.
func (e *Encoder) WriteRaw(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteBytes appends a length-prefixed byte sequence.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteLength(len(b))
	e.WriteRaw(b)
}

func (e *Encoder) WriteString(s string) {
	e.WriteLength(len(s))
	e.buf = append(e.buf, s...)
}
