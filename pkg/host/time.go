package host

import (
	"encoding/hex"
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	// BlockIntervalMs is the block production interval.
	BlockIntervalMs = 500
	// BlockTimestampEpochMs is 2000-01-01T00:00:00Z in ms since 1970.
	BlockTimestampEpochMs = 946684800000
)

// TimePoint is microseconds since 1970.
type TimePoint int64

func NewTimePoint(t time.Time) TimePoint {
	return TimePoint(t.UnixNano() / int64(time.Microsecond))
}

func (t TimePoint) Time() time.Time {
	return time.Unix(0, int64(t)*int64(time.Microsecond)).UTC()
}

func (t TimePoint) SecSinceEpoch() int64 {
	return int64(t) / 1e6
}

func (t TimePoint) String() string {
	return t.Time().Format("2006-01-02T15:04:05.000")
}

// BlockTimestamp counts block slots since BlockTimestampEpochMs.
type BlockTimestamp uint32

// NewBlockTimestamp rounds t down to its block slot.
func NewBlockTimestamp(t TimePoint) BlockTimestamp {
	ms := int64(t) / 1000
	if ms < BlockTimestampEpochMs {
		return 0
	}
	return BlockTimestamp((ms - BlockTimestampEpochMs) / BlockIntervalMs)
}

func (b BlockTimestamp) TimePoint() TimePoint {
	ms := int64(b)*BlockIntervalMs + BlockTimestampEpochMs
	return TimePoint(ms * 1000)
}

func (b BlockTimestamp) Next() BlockTimestamp {
	return b + 1
}

func (b BlockTimestamp) String() string {
	return b.TimePoint().String()
}

// Checksum256 is a 256-bit digest, such as a protocol feature digest.
type Checksum256 [32]byte

// FeatureDigest derives the digest of a named protocol feature.
func FeatureDigest(feature string) Checksum256 {
	return Checksum256(sha3.Sum256([]byte(feature)))
}

func (c Checksum256) String() string {
	return hex.EncodeToString(c[:])
}

// ParseChecksum256 accepts a 64 character hex string or a multibase
// encoded 32 byte digest.
func ParseChecksum256(s string) (Checksum256, error) {
	var c Checksum256

	raw, err := hex.DecodeString(s)
	if err != nil {
		_, raw, err = multibase.Decode(s)
		if err != nil {
			return c, errors.Wrap(err, "digest is neither hex nor multibase")
		}
	}

	if len(raw) != len(c) {
		return c, errors.Errorf("digest must be %d bytes, got %d", len(c), len(raw))
	}

	copy(c[:], raw)
	return c, nil
}

func (c Checksum256) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Checksum256) UnmarshalText(b []byte) error {
	v, err := ParseChecksum256(string(b))
	if err != nil {
		return err
	}

	*c = v
	return nil
}
