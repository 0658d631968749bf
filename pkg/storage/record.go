package storage

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	CIDEncoding = cid.Raw
)

// ScheduleRecord indexes a stored schedule by version. Authorities holds one
// authority per producer, sorted by name, which become active with the
// version.
type ScheduleRecord struct {
	Version     uint32                       `msgpack:"v"`
	ID          cid.Cid                      `msgpack:"i"`
	Producers   uint32                       `msgpack:"n"`
	Bloom       []byte                       `msgpack:"b"`
	Authorities []schedule.ProducerAuthority `msgpack:"a"`
}

func (r *ScheduleRecord) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling schedule record")
	}

	return b, nil
}

func (r *ScheduleRecord) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, r); err != nil {
		return errors.Wrap(err, "unmarshaling schedule record")
	}

	return nil
}

// SameAs reports whether o describes the same schedule and authorities.
func (r *ScheduleRecord) SameAs(o *ScheduleRecord) bool {
	if !r.ID.Equals(o.ID) || len(r.Authorities) != len(o.Authorities) {
		return false
	}

	for i := range r.Authorities {
		if !r.Authorities[i].Equal(o.Authorities[i]) {
			return false
		}
	}

	return true
}

// ObjectID is the content id of a canonical encoding.
func ObjectID(d []byte) (cid.Cid, error) {
	h, err := multihash.Sum(d, multihash.SHA3_256, multihash.DefaultLengths[multihash.SHA3_256])
	if err != nil {
		return cid.Undef, errors.Wrap(err, "hashing object")
	}

	return cid.NewCidV1(CIDEncoding, h), nil
}

// ScheduleAuthorities returns an authority for every producer in s, taken
// from explicit when present and otherwise derived from the producer key.
// Explicit authorities must name a producer of s, at most once each.
func ScheduleAuthorities(s *schedule.ProducerSchedule, explicit []schedule.ProducerAuthority) ([]schedule.ProducerAuthority, error) {
	byName := make(map[uint64]schedule.ProducerAuthority, len(explicit))

	for _, a := range explicit {
		if a.Authority == nil {
			return nil, errors.Wrapf(ErrInvalidAuthority, "producer %s has no authority", a.ProducerName)
		}
		if _, ok := s.Producer(a.ProducerName); !ok {
			return nil, errors.Wrapf(ErrInvalidAuthority, "producer %s is not in schedule %d", a.ProducerName, s.Version)
		}
		if _, ok := byName[a.ProducerName.Uint64()]; ok {
			return nil, errors.Wrapf(ErrDuplicateProducer, "authority for %s", a.ProducerName)
		}
		byName[a.ProducerName.Uint64()] = a
	}

	out := make([]schedule.ProducerAuthority, 0, len(s.Producers))
	for _, p := range s.Producers {
		if a, ok := byName[p.ProducerName.Uint64()]; ok {
			out = append(out, a)
		} else {
			out = append(out, p.ToAuthority())
		}
	}

	schedule.SortProducerAuthorities(out)

	return out, nil
}

// EncodeSchedule returns the canonical encoding of s, its content id and
// its index record.
func EncodeSchedule(s *schedule.ProducerSchedule, explicit []schedule.ProducerAuthority) ([]byte, *ScheduleRecord, error) {
	d, err := s.MarshalBinary()
	if err != nil {
		return nil, nil, errors.Wrap(err, "encoding schedule")
	}

	id, err := ObjectID(d)
	if err != nil {
		return nil, nil, err
	}

	bloom, err := MakeBloom(s.Names())
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating producer bloom filter")
	}

	auths, err := ScheduleAuthorities(s, explicit)
	if err != nil {
		return nil, nil, err
	}

	r := &ScheduleRecord{
		Version:     s.Version,
		ID:          id,
		Producers:   uint32(len(s.Producers)),
		Bloom:       bloom,
		Authorities: auths,
	}

	return d, r, nil
}

// DecodeSchedule decodes d and checks it against the expected id.
func DecodeSchedule(d []byte, id cid.Cid) (*schedule.ProducerSchedule, error) {
	got, err := ObjectID(d)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, errors.Errorf("object %s does not match id %s", got, id)
	}

	s := &schedule.ProducerSchedule{}
	if err := s.UnmarshalBinary(d); err != nil {
		return nil, errors.Wrap(err, "decoding schedule")
	}

	return s, nil
}
