package name

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	charmap = ".12345abcdefghijklmnopqrstuvwxyz"

	maxLen = 13
)

var (
	ErrInvalidName = errors.New("invalid name")
)

// Name is a 64-bit account identifier. The zero value is the empty name.
type Name uint64

// Parse converts the text form of a name (up to 13 characters from
// ".12345a-z", the last of which may only be from ".12345a-j") into
// its 64-bit representation.
func Parse(s string) (Name, error) {
	if len(s) > maxLen {
		return 0, errors.Wrapf(ErrInvalidName, "%q longer than %d characters", s, maxLen)
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		c, ok := charToSymbol(s[i])
		if !ok {
			return 0, errors.Wrapf(ErrInvalidName, "%q contains invalid character %q", s, s[i])
		}

		if i < 12 {
			v |= uint64(c&0x1f) << (64 - 5*(i+1))
		} else {
			if c > 0x0f {
				return 0, errors.Wrapf(ErrInvalidName, "13th character of %q must be in [.1-5a-j]", s)
			}
			v |= uint64(c & 0x0f)
		}
	}

	return Name(v), nil
}

// MustParse is like Parse but panics on invalid input. Intended for
// constants and tests.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func charToSymbol(c byte) (byte, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 6, true
	case c >= '1' && c <= '5':
		return c - '1' + 1, true
	case c == '.':
		return 0, true
	}
	return 0, false
}

func (n Name) String() string {
	var b [maxLen]byte

	v := uint64(n)
	for i := 0; i < maxLen; i++ {
		if i == 0 {
			b[12-i] = charmap[v&0x0f]
			v >>= 4
		} else {
			b[12-i] = charmap[v&0x1f]
			v >>= 5
		}
	}

	return strings.TrimRight(string(b[:]), ".")
}

func (n Name) Uint64() uint64 {
	return uint64(n)
}

func (n Name) IsEmpty() bool {
	return n == 0
}

// Less reports whether n sorts strictly before o.
func (n Name) Less(o Name) bool {
	return n < o
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Name) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}

	*n = v
	return nil
}
