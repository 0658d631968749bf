package cryptography

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/wire"
)

// KeyType is the variant tag of a public key on the wire.
type KeyType uint32

const (
	KeyTypeK1 KeyType = iota
	KeyTypeR1
	KeyTypeWA
)

const (
	CompressedKeyLen = 33
)

var (
	ErrInvalidKey = errors.New("invalid public key")
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeK1:
		return "K1"
	case KeyTypeR1:
		return "R1"
	case KeyTypeWA:
		return "WA"
	default:
		return "unknown"
	}
}

// UserPresence as carried by WebAuthn keys.
type UserPresence uint8

const (
	UserPresenceNone UserPresence = iota
	UserPresencePresent
	UserPresenceVerified
)

// PublicKey is an algorithm tagged public key value. K1 and R1 keys carry a
// 33 byte compressed point. WA keys additionally carry the required user
// presence level and the relying party id.
type PublicKey struct {
	Type         KeyType
	Data         []byte
	UserPresence UserPresence
	RPID         string
}

func NewK1PublicKey(compressed []byte) PublicKey {
	return PublicKey{Type: KeyTypeK1, Data: compressed}
}

func NewR1PublicKey(compressed []byte) PublicKey {
	return PublicKey{Type: KeyTypeR1, Data: compressed}
}

func NewWAPublicKey(compressed []byte, presence UserPresence, rpid string) PublicKey {
	return PublicKey{Type: KeyTypeWA, Data: compressed, UserPresence: presence, RPID: rpid}
}

func (k PublicKey) EncodeTo(e *wire.Encoder) {
	e.WriteVarUint32(uint32(k.Type))
	k.encodePayload(e)
}

func (k PublicKey) encodePayload(e *wire.Encoder) {
	e.WriteRaw(k.Data)

	if k.Type == KeyTypeWA {
		e.WriteUint8(uint8(k.UserPresence))
		e.WriteString(k.RPID)
	}
}

func (k PublicKey) payload() []byte {
	e := wire.NewEncoder(len(k.Data))
	k.encodePayload(e)
	return e.Bytes()
}

// DecodeFrom replaces k with the key read from d. k is untouched on error.
func (k *PublicKey) DecodeFrom(d *wire.Decoder) error {
	t, err := d.ReadVarUint32()
	if err != nil {
		return errors.Wrap(err, "reading key type")
	}

	pk, err := decodePayload(d, KeyType(t))
	if err != nil {
		return err
	}

	*k = pk
	return nil
}

// Bytes returns the canonical wire encoding of the key.
func (k PublicKey) Bytes() []byte {
	e := wire.NewEncoder(1 + len(k.Data))
	k.EncodeTo(e)
	return e.Bytes()
}

// Compare orders keys by their canonical encoding.
func (k PublicKey) Compare(o PublicKey) int {
	return bytes.Compare(k.Bytes(), o.Bytes())
}

func (k PublicKey) Less(o PublicKey) bool {
	return k.Compare(o) < 0
}

func (k PublicKey) Equal(o PublicKey) bool {
	return k.Compare(o) == 0
}

func (k PublicKey) IsZero() bool {
	return len(k.Data) == 0
}

// Validate checks that the key's point data decodes on its curve.
func (k PublicKey) Validate() error {
	if len(k.Data) != CompressedKeyLen {
		return errors.Wrapf(ErrInvalidKey, "%s key must be %d bytes, got %d", k.Type, CompressedKeyLen, len(k.Data))
	}

	switch k.Type {
	case KeyTypeK1:
		return validateSecp256k1(k.Data)
	case KeyTypeR1:
		return validateP256(k.Data)
	case KeyTypeWA:
		if k.UserPresence > UserPresenceVerified {
			return errors.Wrapf(ErrInvalidKey, "unknown user presence %d", k.UserPresence)
		}
		return validateP256(k.Data)
	default:
		return errors.Wrapf(ErrInvalidKey, "unknown key type %d", k.Type)
	}
}

func (k PublicKey) MarshalBinary() ([]byte, error) {
	return k.Bytes(), nil
}

func (k *PublicKey) UnmarshalBinary(b []byte) error {
	d := wire.NewDecoder(b)

	var pk PublicKey
	if err := pk.DecodeFrom(d); err != nil {
		return err
	}
	if err := d.Done(); err != nil {
		return err
	}

	*k = pk
	return nil
}

func decodePayload(d *wire.Decoder, t KeyType) (PublicKey, error) {
	pk := PublicKey{Type: t}

	var err error
	switch t {
	case KeyTypeK1, KeyTypeR1:
		if pk.Data, err = d.ReadRaw(CompressedKeyLen); err != nil {
			return PublicKey{}, errors.Wrap(err, "reading key data")
		}
	case KeyTypeWA:
		if pk.Data, err = d.ReadRaw(CompressedKeyLen); err != nil {
			return PublicKey{}, errors.Wrap(err, "reading key data")
		}

		up, err := d.ReadUint8()
		if err != nil {
			return PublicKey{}, errors.Wrap(err, "reading user presence")
		}
		pk.UserPresence = UserPresence(up)

		if pk.RPID, err = d.ReadString(); err != nil {
			return PublicKey{}, errors.Wrap(err, "reading rpid")
		}
	default:
		return PublicKey{}, errors.Wrapf(wire.ErrMalformed, "unknown key type %d", t)
	}

	return pk, nil
}
