package schedule

import (
	"github.com/tcfw/mastersched/pkg/wire"
)

// smallest possible encodings, used to bound length prefixes
const (
	minPublicKeySize         = 1 + 33
	minProducerKeySize       = 8 + minPublicKeySize
	minKeyWeightSize         = minPublicKeySize + 2
	minProducerAuthoritySize = 8 + 1 + 4 + 1
)

type encodable interface {
	EncodeTo(*wire.Encoder)
}

type decodable interface {
	DecodeFrom(*wire.Decoder) error
}

func marshal(v encodable) ([]byte, error) {
	e := wire.NewEncoder(64)
	v.EncodeTo(e)
	return e.Bytes(), nil
}

// unmarshal decodes b into v, which must consume b entirely. v is only
// assigned once the whole input has been accepted.
func unmarshal[T any, PT interface {
	*T
	decodable
}](b []byte, v PT) error {
	var tmp T
	d := wire.NewDecoder(b)

	if err := PT(&tmp).DecodeFrom(d); err != nil {
		return err
	}
	if err := d.Done(); err != nil {
		return err
	}

	*v = tmp
	return nil
}
