package wire

import "github.com/pkg/errors"

var (
	// ErrMalformed is returned for any structural decode failure: truncated
	// input, bad length prefixes, unknown variant tags or trailing bytes.
	ErrMalformed = errors.New("malformed encoding")
)

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}
