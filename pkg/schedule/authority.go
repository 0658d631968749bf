package schedule

import (
	"bytes"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/wire"
)

// AuthorityTag is the variant index of a block signing authority.
type AuthorityTag uint32

const (
	AuthorityTagV0 AuthorityTag = iota
)

// KeyWeight pairs a public key with its weight in a threshold authority.
type KeyWeight struct {
	Key    cryptography.PublicKey
	Weight uint16
}

func (kw KeyWeight) Equal(o KeyWeight) bool {
	return kw.Weight == o.Weight && kw.Key.Equal(o.Key)
}

func (kw KeyWeight) EncodeTo(e *wire.Encoder) {
	kw.Key.EncodeTo(e)
	e.WriteUint16(kw.Weight)
}

func (kw *KeyWeight) DecodeFrom(d *wire.Decoder) error {
	var k cryptography.PublicKey
	if err := k.DecodeFrom(d); err != nil {
		return errors.Wrap(err, "reading key")
	}

	w, err := d.ReadUint16()
	if err != nil {
		return errors.Wrap(err, "reading weight")
	}

	*kw = KeyWeight{Key: k, Weight: w}
	return nil
}

func (kw KeyWeight) MarshalBinary() ([]byte, error) {
	return marshal(kw)
}

func (kw *KeyWeight) UnmarshalBinary(b []byte) error {
	return unmarshal(b, kw)
}

// BlockSigningAuthority is the closed set of authority versions. The only
// implementations live in this package.
type BlockSigningAuthority interface {
	Tag() AuthorityTag
	IsValid() bool
	EncodeTo(*wire.Encoder)

	sealed()
}

var (
	_ BlockSigningAuthority = BlockSigningAuthorityV0{}
)

// BlockSigningAuthorityV0 is a weighted threshold multi-sig authority.
type BlockSigningAuthorityV0 struct {
	Threshold uint32
	Keys      []KeyWeight
}

func (BlockSigningAuthorityV0) Tag() AuthorityTag { return AuthorityTagV0 }

func (BlockSigningAuthorityV0) sealed() {}

// IsValid reports whether the authority can be satisfied and is well
// formed: at least one key, keys strictly increasing by encoding, a non
// zero threshold and a total weight that reaches it. The weight sum
// saturates at math.MaxUint32.
func (a BlockSigningAuthorityV0) IsValid() bool {
	if a.Threshold == 0 || len(a.Keys) == 0 {
		return false
	}

	var prev []byte
	for i, kw := range a.Keys {
		enc := kw.Key.Bytes()
		if i > 0 && bytes.Compare(prev, enc) >= 0 {
			return false
		}
		prev = enc
	}

	return a.WeightSum() >= a.Threshold
}

// WeightSum is the sum of all key weights, saturating at math.MaxUint32.
func (a BlockSigningAuthorityV0) WeightSum() uint32 {
	var sum uint64
	for _, kw := range a.Keys {
		sum += uint64(kw.Weight)
		if sum >= math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return uint32(sum)
}

// KeysSatisfy reports whether signatures from signers would reach the
// threshold. Keys not in the authority are ignored and each authority key
// counts at most once.
func (a BlockSigningAuthorityV0) KeysSatisfy(signers []cryptography.PublicKey) bool {
	if a.Threshold == 0 {
		return false
	}

	var sum uint64
	for _, kw := range a.Keys {
		for _, s := range signers {
			if kw.Key.Equal(s) {
				sum += uint64(kw.Weight)
				break
			}
		}
		if sum >= uint64(a.Threshold) {
			return true
		}
	}

	return false
}

// SortKeys orders the keys by their canonical encoding.
func (a BlockSigningAuthorityV0) SortKeys() {
	sort.SliceStable(a.Keys, func(i, j int) bool {
		return a.Keys[i].Key.Less(a.Keys[j].Key)
	})
}

func (a BlockSigningAuthorityV0) Equal(o BlockSigningAuthorityV0) bool {
	if a.Threshold != o.Threshold || len(a.Keys) != len(o.Keys) {
		return false
	}

	for i := range a.Keys {
		if !a.Keys[i].Equal(o.Keys[i]) {
			return false
		}
	}

	return true
}

func (a BlockSigningAuthorityV0) EncodeTo(e *wire.Encoder) {
	e.WriteUint32(a.Threshold)
	e.WriteLength(len(a.Keys))
	for _, kw := range a.Keys {
		kw.EncodeTo(e)
	}
}

func (a *BlockSigningAuthorityV0) DecodeFrom(d *wire.Decoder) error {
	t, err := d.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "reading threshold")
	}

	n, err := d.ReadLength(minKeyWeightSize)
	if err != nil {
		return errors.Wrap(err, "reading key count")
	}

	keys := make([]KeyWeight, n)
	for i := range keys {
		if err := keys[i].DecodeFrom(d); err != nil {
			return errors.Wrapf(err, "reading key %d", i)
		}
	}

	*a = BlockSigningAuthorityV0{Threshold: t, Keys: keys}
	return nil
}

func (a BlockSigningAuthorityV0) MarshalBinary() ([]byte, error) {
	return marshal(a)
}

func (a *BlockSigningAuthorityV0) UnmarshalBinary(b []byte) error {
	return unmarshal(b, a)
}

// EncodeAuthority writes the variant tag followed by the authority payload.
// a must not be nil; MarshalAuthority and the MarshalBinary methods check
// this and return ErrNilAuthority.
func EncodeAuthority(e *wire.Encoder, a BlockSigningAuthority) {
	e.WriteVarUint32(uint32(a.Tag()))
	a.EncodeTo(e)
}

// DecodeAuthority reads a tagged authority. Unknown tags are rejected.
func DecodeAuthority(d *wire.Decoder) (BlockSigningAuthority, error) {
	tag, err := d.ReadVarUint32()
	if err != nil {
		return nil, errors.Wrap(err, "reading authority tag")
	}

	switch AuthorityTag(tag) {
	case AuthorityTagV0:
		var a BlockSigningAuthorityV0
		if err := a.DecodeFrom(d); err != nil {
			return nil, errors.Wrap(err, "reading v0 authority")
		}
		return a, nil
	default:
		return nil, errors.Wrapf(ErrMalformedSchedule, "unknown authority tag %d", tag)
	}
}

// MarshalAuthority returns the tagged encoding of a.
func MarshalAuthority(a BlockSigningAuthority) ([]byte, error) {
	if a == nil {
		return nil, ErrNilAuthority
	}

	e := wire.NewEncoder(64)
	EncodeAuthority(e, a)
	return e.Bytes(), nil
}

func UnmarshalAuthority(b []byte) (BlockSigningAuthority, error) {
	d := wire.NewDecoder(b)

	a, err := DecodeAuthority(d)
	if err != nil {
		return nil, err
	}
	if err := d.Done(); err != nil {
		return nil, err
	}

	return a, nil
}

func authoritiesEqual(a, b BlockSigningAuthority) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Tag() != b.Tag() {
		return false
	}

	switch av := a.(type) {
	case BlockSigningAuthorityV0:
		return av.Equal(b.(BlockSigningAuthorityV0))
	}

	return false
}

// ProducerAuthority maps a producer to its block signing authority.
type ProducerAuthority struct {
	ProducerName name.Name
	Authority    BlockSigningAuthority
}

func NewProducerAuthority(n name.Name, a BlockSigningAuthority) ProducerAuthority {
	return ProducerAuthority{ProducerName: n, Authority: a}
}

// Less orders producer authorities by name only.
func (p ProducerAuthority) Less(o ProducerAuthority) bool {
	return p.ProducerName.Less(o.ProducerName)
}

func (p ProducerAuthority) Equal(o ProducerAuthority) bool {
	return p.ProducerName == o.ProducerName && authoritiesEqual(p.Authority, o.Authority)
}

// IsValid reports whether the authority is present and valid.
func (p ProducerAuthority) IsValid() bool {
	return p.Authority != nil && p.Authority.IsValid()
}

// EncodeTo requires a non-nil Authority, see EncodeAuthority.
func (p ProducerAuthority) EncodeTo(e *wire.Encoder) {
	e.WriteUint64(p.ProducerName.Uint64())
	EncodeAuthority(e, p.Authority)
}

func (p *ProducerAuthority) DecodeFrom(d *wire.Decoder) error {
	n, err := d.ReadUint64()
	if err != nil {
		return errors.Wrap(err, "reading producer name")
	}

	a, err := DecodeAuthority(d)
	if err != nil {
		return err
	}

	*p = ProducerAuthority{ProducerName: name.Name(n), Authority: a}
	return nil
}

func (p ProducerAuthority) MarshalBinary() ([]byte, error) {
	if p.Authority == nil {
		return nil, errors.Wrapf(ErrNilAuthority, "producer %s", p.ProducerName)
	}
	return marshal(p)
}

func (p *ProducerAuthority) UnmarshalBinary(b []byte) error {
	return unmarshal(b, p)
}

// ProducerAuthorities sorts by producer name.
type ProducerAuthorities []ProducerAuthority

func (l ProducerAuthorities) Len() int           { return len(l) }
func (l ProducerAuthorities) Less(i, j int) bool { return l[i].Less(l[j]) }
func (l ProducerAuthorities) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }

// SortProducerAuthorities sorts by producer name, keeping the relative
// order of equal names.
func SortProducerAuthorities(l []ProducerAuthority) {
	sort.Stable(ProducerAuthorities(l))
}

// FindProducerAuthority binary searches a name sorted list.
func FindProducerAuthority(sorted []ProducerAuthority, n name.Name) (ProducerAuthority, bool) {
	i := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].ProducerName.Less(n)
	})

	if i < len(sorted) && sorted[i].ProducerName == n {
		return sorted[i], true
	}

	return ProducerAuthority{}, false
}

// AuthoritySchedule is the authority based form of a producer schedule.
type AuthoritySchedule struct {
	Version   uint32
	Producers []ProducerAuthority
}

func (s AuthoritySchedule) Names() []name.Name {
	names := make([]name.Name, len(s.Producers))
	for i, p := range s.Producers {
		names[i] = p.ProducerName
	}
	return names
}

func (s AuthoritySchedule) Equal(o AuthoritySchedule) bool {
	if s.Version != o.Version || len(s.Producers) != len(o.Producers) {
		return false
	}

	for i := range s.Producers {
		if !s.Producers[i].Equal(o.Producers[i]) {
			return false
		}
	}

	return true
}

// EncodeTo requires every producer to have an authority, see
// EncodeAuthority.
func (s AuthoritySchedule) EncodeTo(e *wire.Encoder) {
	e.WriteUint32(s.Version)
	e.WriteLength(len(s.Producers))
	for _, p := range s.Producers {
		p.EncodeTo(e)
	}
}

func (s *AuthoritySchedule) DecodeFrom(d *wire.Decoder) error {
	v, err := d.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "reading version")
	}

	n, err := d.ReadLength(minProducerAuthoritySize)
	if err != nil {
		return errors.Wrap(err, "reading producer count")
	}

	producers := make([]ProducerAuthority, n)
	for i := range producers {
		if err := producers[i].DecodeFrom(d); err != nil {
			return errors.Wrapf(err, "reading producer %d", i)
		}
	}

	*s = AuthoritySchedule{Version: v, Producers: producers}
	return nil
}

func (s AuthoritySchedule) MarshalBinary() ([]byte, error) {
	for _, p := range s.Producers {
		if p.Authority == nil {
			return nil, errors.Wrapf(ErrNilAuthority, "producer %s", p.ProducerName)
		}
	}
	return marshal(s)
}

func (s *AuthoritySchedule) UnmarshalBinary(b []byte) error {
	return unmarshal(b, s)
}
