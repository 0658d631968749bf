package storage

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
)

// Store keeps every producer schedule version seen, the currently active
// version and the block signing authorities of the active producers.
//
// Each stored version carries its own authorities. They only replace the
// active authorities when that version is activated.
type Store interface {
	PutSchedule(context.Context, *schedule.ProducerSchedule) (cid.Cid, error)
	// StoreSchedule stores s with its explicit authorities and, when
	// activate is set, activates it. Either everything is written or nothing.
	StoreSchedule(ctx context.Context, s *schedule.ProducerSchedule, auths []schedule.ProducerAuthority, activate bool) (cid.Cid, error)
	GetSchedule(context.Context, uint32) (*schedule.ProducerSchedule, error)

	Activate(context.Context, uint32) error
	Active(context.Context) (*schedule.ProducerSchedule, error)
	ActiveMasters(context.Context) ([]name.Name, error)
	IsActiveMaster(context.Context, name.Name) (bool, error)

	// SetAuthority overrides the authority of a producer in the active set.
	SetAuthority(context.Context, schedule.ProducerAuthority) error
	Authority(context.Context, name.Name) (*schedule.ProducerAuthority, error)
	Authorities(context.Context) ([]schedule.ProducerAuthority, error)

	HasGenesisApplied() bool
	ApplyGenesis(context.Context, *GenesisInfo) error

	Stop() error
}
