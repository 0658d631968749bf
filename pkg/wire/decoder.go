package wire

import (
	"encoding/binary"
	"math"
)

const (
	maxVarUint32Len = 5
)

// Decoder reads canonical encodings from a byte slice. Every read either
// consumes exactly the bytes of one value or fails with ErrMalformed and
// leaves the position unchanged.
type Decoder struct {
	data []byte
	pos  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) Pos() int {
	return d.pos
}

// Done returns an error if unread bytes remain.
func (d *Decoder) Done() error {
	if r := d.Remaining(); r != 0 {
		return malformed("%d trailing bytes", r)
	}
	return nil
}

func (d *Decoder) need(n int, what string) error {
	if d.Remaining() < n {
		return malformed("%s requires %d bytes, remaining %d", what, n, d.Remaining())
	}
	return nil
}

func (d *Decoder) ReadUint8() (uint8, error) {
	if err := d.need(1, "uint8"); err != nil {
		return 0, err
	}

	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) ReadBool() (bool, error) {
	if err := d.need(1, "bool"); err != nil {
		return false, err
	}

	switch d.data[d.pos] {
	case 0:
		d.pos++
		return false, nil
	case 1:
		d.pos++
		return true, nil
	default:
		return false, malformed("invalid bool byte 0x%02x", d.data[d.pos])
	}
}

func (d *Decoder) ReadUint16() (uint16, error) {
	if err := d.need(2, "uint16"); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	if err := d.need(4, "uint32"); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) ReadUint64() (uint64, error) {
	if err := d.need(8, "uint64"); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *Decoder) ReadVarUint32() (uint32, error) {
	window := d.data[d.pos:]
	if len(window) > maxVarUint32Len {
		window = window[:maxVarUint32Len]
	}

	v, n := binary.Uvarint(window)
	switch {
	case n == 0:
		return 0, malformed("truncated varuint32")
	case n < 0 || v > math.MaxUint32:
		return 0, malformed("varuint32 overflow")
	}

	d.pos += n
	return uint32(v), nil
}

// ReadLength reads a sequence length prefix and checks that at least
// minElemSize*length bytes remain, so a corrupt prefix cannot trigger a
// huge allocation.
func (d *Decoder) ReadLength(minElemSize int) (int, error) {
	start := d.pos

	l, err := d.ReadVarUint32()
	if err != nil {
		return 0, err
	}

	if minElemSize > 0 && uint64(l)*uint64(minElemSize) > uint64(d.Remaining()) {
		d.pos = start
		return 0, malformed("length prefix %d exceeds remaining %d bytes", l, d.Remaining())
	}

	return int(l), nil
}

// ReadRaw reads n bytes without a length prefix. The returned slice is a
// copy.
func (d *Decoder) ReadRaw(n int) ([]byte, error) {
	if err := d.need(n, "fixed bytes"); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, d.data[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *Decoder) ReadBytes() ([]byte, error) {
	start := d.pos

	l, err := d.ReadLength(1)
	if err != nil {
		return nil, err
	}

	b, err := d.ReadRaw(l)
	if err != nil {
		d.pos = start
		return nil, err
	}

	return b, nil
}

func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
