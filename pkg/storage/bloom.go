package storage

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/tcfw/mastersched/pkg/name"
)

const (
	// MaxScheduleProducers sizes the bloom filter. Larger schedules still
	// work with a higher false positive rate.
	MaxScheduleProducers = 125

	falsePositive = 0.01
)

func nameKey(n name.Name) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n.Uint64())
	return b[:]
}

func MakeBloom(names []name.Name) ([]byte, error) {
	b := bloom.NewWithEstimates(MaxScheduleProducers, falsePositive)

	for _, n := range names {
		b.Add(nameKey(n))
	}

	return b.GobEncode()
}

func BloomContains(b []byte, n name.Name) (bool, error) {
	bloom := bloom.NewWithEstimates(MaxScheduleProducers, falsePositive)

	if err := bloom.GobDecode(b); err != nil {
		return false, err
	}

	return bloom.Test(nameKey(n)), nil
}
