package schedule

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/wire"
)

// testKey builds a K1 key whose encoding sorts by b.
func testKey(b byte) cryptography.PublicKey {
	d := make([]byte, cryptography.CompressedKeyLen)
	d[0] = 0x02
	d[1] = b
	return cryptography.NewK1PublicKey(d)
}

func testSchedule() ProducerSchedule {
	return ProducerSchedule{
		Version: 7,
		Producers: []ProducerKey{
			NewProducerKey(name.MustParse("master.c"), testKey(3)),
			NewProducerKey(name.MustParse("master.a"), testKey(1)),
			NewProducerKey(name.MustParse("master.b"), testKey(2)),
		},
	}
}

func TestProducerKeyRoundTrip(t *testing.T) {
	pk := NewProducerKey(name.MustParse("alice"), testKey(9))

	b, err := pk.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	assert.Len(t, b, 8+1+cryptography.CompressedKeyLen)

	var rb ProducerKey
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, pk, rb)
	assert.True(t, pk.Equal(rb))
}

func TestProducerScheduleRoundTripKeepsOrder(t *testing.T) {
	s := testSchedule()

	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var rb ProducerSchedule
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, s, rb)
	assert.Equal(t, []name.Name{
		name.MustParse("master.c"),
		name.MustParse("master.a"),
		name.MustParse("master.b"),
	}, rb.Names())
}

func TestEmptyScheduleRoundTrip(t *testing.T) {
	s := ProducerSchedule{Version: 1}

	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte{1, 0, 0, 0, 0}, b)

	var rb ProducerSchedule
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	assert.True(t, s.Equal(rb))
}

func TestProducerScheduleLayout(t *testing.T) {
	s := ProducerSchedule{
		Version:   0x01020304,
		Producers: []ProducerKey{NewProducerKey(name.Name(0x1122334455667788), testKey(0xab))},
	}

	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	expected := "04030201" + // version
		"01" + // producer count
		"8877665544332211" + // name
		"00" + // K1
		"02ab" + hex.EncodeToString(make([]byte, 31))

	assert.Equal(t, expected, hex.EncodeToString(b))
}

func TestKeyWeightRoundTrip(t *testing.T) {
	kw := KeyWeight{Key: testKey(4), Weight: 0xbeef}

	b, err := kw.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []byte{0xef, 0xbe}, b[len(b)-2:])

	var rb KeyWeight
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, kw, rb)
}

func TestAuthorityRoundTrip(t *testing.T) {
	a := BlockSigningAuthorityV0{
		Threshold: 2,
		Keys: []KeyWeight{
			{Key: testKey(1), Weight: 1},
			{Key: testKey(2), Weight: 1},
		},
	}

	b, err := a.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var rb BlockSigningAuthorityV0
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, a, rb)

	tagged, err := MarshalAuthority(a)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, append([]byte{0}, b...), tagged)

	rba, err := UnmarshalAuthority(tagged)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, BlockSigningAuthority(a), rba)
}

func TestProducerAuthorityRoundTrip(t *testing.T) {
	pa := NewProducerAuthority(name.MustParse("bob"), BlockSigningAuthorityV0{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: testKey(5), Weight: 1}},
	})

	b, err := pa.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var rb ProducerAuthority
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, pa, rb)
	assert.True(t, pa.Equal(rb))
}

func TestAuthorityScheduleRoundTrip(t *testing.T) {
	as := testSchedule().ToAuthoritySchedule()

	b, err := as.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var rb AuthoritySchedule
	if err := rb.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}

	assert.True(t, as.Equal(rb))
	assert.Equal(t, testSchedule().Names(), rb.Names())
}

func TestUnknownAuthorityTag(t *testing.T) {
	pa := NewProducerAuthority(name.MustParse("bob"), BlockSigningAuthorityV0{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: testKey(5), Weight: 1}},
	})

	b, err := pa.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	// tag follows the 8 byte name
	b[8] = 1

	rb := ProducerAuthority{ProducerName: name.MustParse("keep")}
	err = rb.UnmarshalBinary(b)

	assert.True(t, errors.Is(err, ErrMalformedSchedule))
	assert.Equal(t, name.MustParse("keep"), rb.ProducerName)
	assert.Nil(t, rb.Authority)
}

func TestTruncatedSchedule(t *testing.T) {
	s := testSchedule()

	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 3, 4, 5, 20, len(b) - 1} {
		rb := ProducerSchedule{Version: 99}
		err := rb.UnmarshalBinary(b[:n])

		assert.True(t, errors.Is(err, ErrMalformedSchedule), "truncated at %d", n)
		assert.Equal(t, ProducerSchedule{Version: 99}, rb)
	}
}

func TestTruncatedMidSequenceLength(t *testing.T) {
	// version then an unterminated varuint32
	b := []byte{1, 0, 0, 0, 0x80}

	var rb ProducerSchedule
	err := rb.UnmarshalBinary(b)
	assert.True(t, errors.Is(err, ErrMalformedSchedule))
}

func TestLengthPrefixBeyondInput(t *testing.T) {
	b := []byte{1, 0, 0, 0, 0xff, 0xff, 0x03}

	var rb ProducerSchedule
	err := rb.UnmarshalBinary(b)
	assert.True(t, errors.Is(err, ErrMalformedSchedule))
}

func TestTrailingBytesRejected(t *testing.T) {
	b, err := testSchedule().MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var rb ProducerSchedule
	err = rb.UnmarshalBinary(append(b, 0))
	assert.True(t, errors.Is(err, wire.ErrMalformed))
	assert.Nil(t, rb.Producers)
}

func TestV0EncodingIndependentOfVariantSet(t *testing.T) {
	a := BlockSigningAuthorityV0{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: testKey(1), Weight: 1}},
	}

	tagged, err := MarshalAuthority(a)
	if err != nil {
		t.Fatal(err)
	}

	expected := "00" + // tag
		"01000000" + // threshold
		"01" + // key count
		"00" + "0201" + hex.EncodeToString(make([]byte, 31)) + // key
		"0100" // weight

	assert.Equal(t, expected, hex.EncodeToString(tagged))
}

func TestOrderingIsNameOnly(t *testing.T) {
	a := NewProducerKey(name.MustParse("alice"), testKey(9))
	b := NewProducerKey(name.MustParse("bob"), testKey(1))
	a2 := NewProducerKey(name.MustParse("alice"), testKey(1))

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a2))
	assert.False(t, a2.Less(a))
	assert.False(t, a.Equal(a2))

	pa := a.ToAuthority()
	pb := b.ToAuthority()
	assert.True(t, pa.Less(pb))
	assert.False(t, pb.Less(pa))
	assert.False(t, pa.Less(a2.ToAuthority()))
}

func TestSortAndFind(t *testing.T) {
	as := testSchedule().ToAuthoritySchedule()
	list := append([]ProducerAuthority{}, as.Producers...)

	SortProducerAuthorities(list)

	assert.Equal(t, []name.Name{
		name.MustParse("master.a"),
		name.MustParse("master.b"),
		name.MustParse("master.c"),
	}, AuthoritySchedule{Producers: list}.Names())

	found, ok := FindProducerAuthority(list, name.MustParse("master.b"))
	assert.True(t, ok)
	assert.Equal(t, name.MustParse("master.b"), found.ProducerName)

	_, ok = FindProducerAuthority(list, name.MustParse("master.d"))
	assert.False(t, ok)

	keys := testSchedule().Producers
	SortProducerKeys(keys)
	assert.Equal(t, name.MustParse("master.a"), keys[0].ProducerName)
}

func TestScheduleHelpers(t *testing.T) {
	s := testSchedule()

	assert.True(t, s.HasUniqueNames())

	p, ok := s.Producer(name.MustParse("master.b"))
	assert.True(t, ok)
	assert.True(t, p.BlockSigningKey.Equal(testKey(2)))

	s.Producers = append(s.Producers, NewProducerKey(name.MustParse("master.a"), testKey(8)))
	assert.False(t, s.HasUniqueNames())
}

func TestToAuthority(t *testing.T) {
	pk := NewProducerKey(name.MustParse("alice"), testKey(1))
	pa := pk.ToAuthority()

	assert.Equal(t, pk.ProducerName, pa.ProducerName)
	assert.True(t, pa.IsValid())
	assert.Equal(t, BlockSigningAuthorityV0{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: testKey(1), Weight: 1}},
	}, pa.Authority)
}

func TestMarshalNilAuthority(t *testing.T) {
	missing := ProducerAuthority{ProducerName: name.MustParse("master.a")}

	assert.NotPanics(t, func() {
		_, err := MarshalAuthority(nil)
		assert.True(t, errors.Is(err, ErrNilAuthority))

		_, err = missing.MarshalBinary()
		assert.True(t, errors.Is(err, ErrNilAuthority))

		s := AuthoritySchedule{
			Version: 1,
			Producers: []ProducerAuthority{
				testKeyAuthority("master.b"),
				missing,
			},
		}
		_, err = s.MarshalBinary()
		assert.True(t, errors.Is(err, ErrNilAuthority))
	})
}

func testKeyAuthority(n string) ProducerAuthority {
	return NewProducerKey(name.MustParse(n), testKey(4)).ToAuthority()
}
