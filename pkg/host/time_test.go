package host

import (
	"strings"
	"testing"
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
)

func TestBlockTimestamp(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, BlockTimestamp(0), NewBlockTimestamp(NewTimePoint(epoch)))
	assert.Equal(t, BlockTimestamp(0), NewBlockTimestamp(NewTimePoint(epoch.Add(499*time.Millisecond))))
	assert.Equal(t, BlockTimestamp(1), NewBlockTimestamp(NewTimePoint(epoch.Add(500*time.Millisecond))))
	assert.Equal(t, BlockTimestamp(7200), NewBlockTimestamp(NewTimePoint(epoch.Add(time.Hour))))

	// before the epoch clamps to slot 0
	assert.Equal(t, BlockTimestamp(0), NewBlockTimestamp(NewTimePoint(epoch.Add(-time.Hour))))

	assert.True(t, epoch.Add(time.Hour).Equal(BlockTimestamp(7200).TimePoint().Time()))
	assert.Equal(t, BlockTimestamp(7201), BlockTimestamp(7200).Next())
}

func TestTimePoint(t *testing.T) {
	tp := TimePoint(1_500_000)

	assert.Equal(t, int64(1), tp.SecSinceEpoch())
	assert.Equal(t, "1970-01-01T00:00:01.500", tp.String())
}

func TestParseChecksum256(t *testing.T) {
	var c Checksum256
	for i := range c {
		c[i] = byte(i)
	}

	rb, err := ParseChecksum256(c.String())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, c, rb)

	mb, err := multibase.Encode(multibase.Base32, c[:])
	if err != nil {
		t.Fatal(err)
	}

	rb, err = ParseChecksum256(mb)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, c, rb)

	_, err = ParseChecksum256(strings.Repeat("ab", 31))
	assert.Error(t, err)

	_, err = ParseChecksum256("not a digest")
	assert.Error(t, err)
}

func TestFeatureDigest(t *testing.T) {
	a := FeatureDigest("ONLY_BILL_FIRST_AUTHORIZER")
	b := FeatureDigest("ONLY_BILL_FIRST_AUTHORIZER")
	c := FeatureDigest("WTMSIG_BLOCK_SIGNATURES")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	parsed, err := ParseChecksum256(a.String())
	assert.NoError(t, err)
	assert.Equal(t, a, parsed)
}
