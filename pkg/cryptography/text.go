package cryptography

import (
	"bytes"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/wire"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

const (
	PublicKeyPrefix       = "PUB_"
	LegacyPublicKeyPrefix = "INE"

	checksumLen = 4
)

func (k PublicKey) String() string {
	suffix := k.Type.String()
	return PublicKeyPrefix + suffix + "_" + base58.Encode(withChecksum(k.payload(), suffix))
}

// LegacyString renders K1 keys in the prefix-only format. Other key types
// have no legacy form and fall back to String.
func (k PublicKey) LegacyString() string {
	if k.Type != KeyTypeK1 {
		return k.String()
	}
	return LegacyPublicKeyPrefix + base58.Encode(withChecksum(k.Data, ""))
}

// ParsePublicKey parses "PUB_<type>_<base58>" or the legacy
// "INE<base58>" K1 form.
func ParsePublicKey(s string) (PublicKey, error) {
	if strings.HasPrefix(s, PublicKeyPrefix) {
		rest := s[len(PublicKeyPrefix):]
		idx := strings.IndexByte(rest, '_')
		if idx < 0 {
			return PublicKey{}, errors.Wrap(ErrInvalidKey, "missing key type")
		}

		suffix, encoded := rest[:idx], rest[idx+1:]

		var t KeyType
		switch suffix {
		case "K1":
			t = KeyTypeK1
		case "R1":
			t = KeyTypeR1
		case "WA":
			t = KeyTypeWA
		default:
			return PublicKey{}, errors.Wrapf(ErrInvalidKey, "unknown key type %q", suffix)
		}

		payload, err := decodeChecked(encoded, suffix)
		if err != nil {
			return PublicKey{}, err
		}

		d := wire.NewDecoder(payload)
		k, err := decodePayload(d, t)
		if err != nil {
			return PublicKey{}, errors.Wrap(ErrInvalidKey, err.Error())
		}
		if err := d.Done(); err != nil {
			return PublicKey{}, errors.Wrap(ErrInvalidKey, err.Error())
		}

		return k, nil
	}

	if strings.HasPrefix(s, LegacyPublicKeyPrefix) {
		payload, err := decodeChecked(s[len(LegacyPublicKeyPrefix):], "")
		if err != nil {
			return PublicKey{}, err
		}
		if len(payload) != CompressedKeyLen {
			return PublicKey{}, errors.Wrapf(ErrInvalidKey, "legacy key must be %d bytes", CompressedKeyLen)
		}

		return NewK1PublicKey(payload), nil
	}

	return PublicKey{}, errors.Wrap(ErrInvalidKey, "unrecognised key prefix")
}

func MustParsePublicKey(s string) PublicKey {
	k, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func checksum(payload []byte, suffix string) []byte {
	h := ripemd160.New()
	h.Write(payload)
	h.Write([]byte(suffix))
	return h.Sum(nil)[:checksumLen]
}

func withChecksum(payload []byte, suffix string) []byte {
	out := make([]byte, 0, len(payload)+checksumLen)
	out = append(out, payload...)
	return append(out, checksum(payload, suffix)...)
}

func decodeChecked(encoded, suffix string) ([]byte, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}
	if len(raw) <= checksumLen {
		return nil, errors.Wrap(ErrInvalidKey, "key too short")
	}

	payload, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(sum, checksum(payload, suffix)) {
		return nil, errors.Wrap(ErrInvalidKey, "checksum mismatch")
	}

	return payload, nil
}

// EncodeMultibase renders the canonical key encoding as base58btc
// multibase, the form used by the inspect command.
func EncodeMultibase(k PublicKey) (string, error) {
	return multibase.Encode(multibase.Base58BTC, k.Bytes())
}

func DecodeMultibase(mb string) (PublicKey, error) {
	_, d, err := multibase.Decode(mb)
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "decoding multibase")
	}

	var k PublicKey
	if err := k.UnmarshalBinary(d); err != nil {
		return PublicKey{}, err
	}

	return k, nil
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(b []byte) error {
	pk, err := ParsePublicKey(string(b))
	if err != nil {
		return err
	}

	*k = pk
	return nil
}
