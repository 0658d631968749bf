package schedule

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/wire"
)

// ProducerKey maps a producer to its block signing key.
type ProducerKey struct {
	ProducerName    name.Name
	BlockSigningKey cryptography.PublicKey
}

func NewProducerKey(n name.Name, k cryptography.PublicKey) ProducerKey {
	return ProducerKey{ProducerName: n, BlockSigningKey: k}
}

// Less orders producer keys by name only.
func (p ProducerKey) Less(o ProducerKey) bool {
	return p.ProducerName.Less(o.ProducerName)
}

func (p ProducerKey) Equal(o ProducerKey) bool {
	return p.ProducerName == o.ProducerName && p.BlockSigningKey.Equal(o.BlockSigningKey)
}

// ToAuthority converts the key into the equivalent single key authority.
func (p ProducerKey) ToAuthority() ProducerAuthority {
	return ProducerAuthority{
		ProducerName: p.ProducerName,
		Authority: BlockSigningAuthorityV0{
			Threshold: 1,
			Keys:      []KeyWeight{{Key: p.BlockSigningKey, Weight: 1}},
		},
	}
}

func (p ProducerKey) EncodeTo(e *wire.Encoder) {
	e.WriteUint64(p.ProducerName.Uint64())
	p.BlockSigningKey.EncodeTo(e)
}

func (p *ProducerKey) DecodeFrom(d *wire.Decoder) error {
	n, err := d.ReadUint64()
	if err != nil {
		return errors.Wrap(err, "reading producer name")
	}

	var k cryptography.PublicKey
	if err := k.DecodeFrom(d); err != nil {
		return errors.Wrap(err, "reading block signing key")
	}

	*p = ProducerKey{ProducerName: name.Name(n), BlockSigningKey: k}
	return nil
}

func (p ProducerKey) MarshalBinary() ([]byte, error) {
	return marshal(p)
}

func (p *ProducerKey) UnmarshalBinary(b []byte) error {
	return unmarshal(b, p)
}

// SortProducerKeys sorts keys by producer name, keeping the relative
// order of equal names.
func SortProducerKeys(keys []ProducerKey) {
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
}

// ProducerSchedule is the versioned, ordered set of active producers. The
// order of Producers is the block production rotation and is preserved
// exactly by the encoding.
type ProducerSchedule struct {
	Version   uint32
	Producers []ProducerKey
}

// Names returns the producer names in rotation order.
func (s ProducerSchedule) Names() []name.Name {
	names := make([]name.Name, len(s.Producers))
	for i, p := range s.Producers {
		names[i] = p.ProducerName
	}
	return names
}

// Producer returns the entry for n, if scheduled.
func (s ProducerSchedule) Producer(n name.Name) (ProducerKey, bool) {
	for _, p := range s.Producers {
		if p.ProducerName == n {
			return p, true
		}
	}
	return ProducerKey{}, false
}

// HasUniqueNames reports whether no producer name appears twice.
func (s ProducerSchedule) HasUniqueNames() bool {
	seen := make(map[name.Name]struct{}, len(s.Producers))
	for _, p := range s.Producers {
		if _, ok := seen[p.ProducerName]; ok {
			return false
		}
		seen[p.ProducerName] = struct{}{}
	}
	return true
}

func (s ProducerSchedule) Equal(o ProducerSchedule) bool {
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

func (s ProducerSchedule) ToAuthoritySchedule() AuthoritySchedule {
	as := AuthoritySchedule{
		Version:   s.Version,
		Producers: make([]ProducerAuthority, len(s.Producers)),
	}

	for i, p := range s.Producers {
		as.Producers[i] = p.ToAuthority()
	}

	return as
}

func (s ProducerSchedule) EncodeTo(e *wire.Encoder) {
	e.WriteUint32(s.Version)
	e.WriteLength(len(s.Producers))
	for _, p := range s.Producers {
		p.EncodeTo(e)
	}
}

func (s *ProducerSchedule) DecodeFrom(d *wire.Decoder) error {
	v, err := d.ReadUint32()
	if err != nil {
		return errors.Wrap(err, "reading version")
	}

	n, err := d.ReadLength(minProducerKeySize)
	if err != nil {
		return errors.Wrap(err, "reading producer count")
	}

	producers := make([]ProducerKey, n)
	for i := range producers {
		if err := producers[i].DecodeFrom(d); err != nil {
			return errors.Wrapf(err, "reading producer %d", i)
		}
	}

	*s = ProducerSchedule{Version: v, Producers: producers}
	return nil
}

func (s ProducerSchedule) MarshalBinary() ([]byte, error) {
	return marshal(s)
}

func (s *ProducerSchedule) UnmarshalBinary(b []byte) error {
	return unmarshal(b, s)
}
