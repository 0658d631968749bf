package storage

import (
	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/vmihailenco/msgpack/v5"
)

// GenesisInfo is the initial producer set of a chain.
type GenesisInfo struct {
	ChainID     string                       `msgpack:"c"`
	Schedule    schedule.ProducerSchedule    `msgpack:"s"`
	Authorities []schedule.ProducerAuthority `msgpack:"a"`
}

func (g *GenesisInfo) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling genesis info")
	}

	return b, nil
}

func (g *GenesisInfo) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, g); err != nil {
		return errors.Wrap(err, "unmarshaling genesis info")
	}

	return nil
}

// AllAuthorities returns one authority per genesis producer, derived from
// the schedule key for producers with no explicit authority.
func (g *GenesisInfo) AllAuthorities() ([]schedule.ProducerAuthority, error) {
	return ScheduleAuthorities(&g.Schedule, g.Authorities)
}
