package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
)

var (
	_ Store = (*MemStore)(nil)
)

type MemStore struct {
	mu sync.RWMutex
	// metaMu is held for the whole of every check-then-write sequence
	metaMu sync.RWMutex

	objects     map[cid.Cid][]byte
	schedules   map[uint32]*ScheduleRecord
	authorities map[name.Name][]byte

	active    uint32
	hasActive bool

	genesisApplied bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects:     make(map[cid.Cid][]byte),
		schedules:   make(map[uint32]*ScheduleRecord),
		authorities: make(map[name.Name][]byte),
	}
}

func (m *MemStore) putObj(d []byte, id cid.Cid) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[id] = d
}

func (m *MemStore) getObj(id cid.Cid) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.objects[id]
}

func (m *MemStore) PutSchedule(ctx context.Context, s *schedule.ProducerSchedule) (cid.Cid, error) {
	return m.StoreSchedule(ctx, s, nil, false)
}

func (m *MemStore) StoreSchedule(ctx context.Context, s *schedule.ProducerSchedule, auths []schedule.ProducerAuthority, activate bool) (cid.Cid, error) {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	return m.storeSchedule(s, auths, activate)
}

// storeSchedule runs every check before the first write. metaMu must be
// held.
func (m *MemStore) storeSchedule(s *schedule.ProducerSchedule, auths []schedule.ProducerAuthority, activate bool) (cid.Cid, error) {
	d, rec, err := EncodeSchedule(s, auths)
	if err != nil {
		return cid.Undef, err
	}

	existing, exists := m.schedules[s.Version]
	if exists && !existing.SameAs(rec) {
		return cid.Undef, errors.Wrapf(ErrScheduleExists, "version %d", s.Version)
	}

	var authData map[name.Name][]byte
	if activate {
		if err := m.checkActivate(s.Version); err != nil {
			return cid.Undef, err
		}

		authData, err = encodeAuthorities(rec.Authorities)
		if err != nil {
			return cid.Undef, err
		}
	}

	if !exists {
		m.putObj(d, rec.ID)
		m.schedules[s.Version] = rec
	}

	if activate {
		m.setActive(s.Version, authData)
	}

	return rec.ID, nil
}

func encodeAuthorities(auths []schedule.ProducerAuthority) (map[name.Name][]byte, error) {
	out := make(map[name.Name][]byte, len(auths))

	for _, a := range auths {
		d, err := a.MarshalBinary()
		if err != nil {
			return nil, errors.Wrap(err, "encoding authority")
		}
		out[a.ProducerName] = d
	}

	return out, nil
}

func (m *MemStore) GetSchedule(ctx context.Context, version uint32) (*schedule.ProducerSchedule, error) {
	m.metaMu.RLock()
	rec, ok := m.schedules[version]
	m.metaMu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	return m.loadSchedule(rec)
}

func (m *MemStore) loadSchedule(rec *ScheduleRecord) (*schedule.ProducerSchedule, error) {
	d := m.getObj(rec.ID)
	if d == nil {
		return nil, ErrNotFound
	}

	return DecodeSchedule(d, rec.ID)
}

// Activate makes version active and replaces the active authorities with
// the ones stored for it.
func (m *MemStore) Activate(ctx context.Context, version uint32) error {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	rec, ok := m.schedules[version]
	if !ok {
		return ErrNotFound
	}

	if err := m.checkActivate(version); err != nil {
		return err
	}

	authData, err := encodeAuthorities(rec.Authorities)
	if err != nil {
		return err
	}

	m.setActive(version, authData)

	return nil
}

func (m *MemStore) checkActivate(version uint32) error {
	if m.hasActive && version < m.active {
		return errors.Wrapf(ErrScheduleVersionStale, "activating %d over %d", version, m.active)
	}

	return nil
}

func (m *MemStore) setActive(version uint32, authData map[name.Name][]byte) {
	m.active = version
	m.hasActive = true
	m.authorities = authData
}

func (m *MemStore) activeRecord() (*ScheduleRecord, error) {
	m.metaMu.RLock()
	defer m.metaMu.RUnlock()

	if !m.hasActive {
		return nil, ErrNoActiveSchedule
	}

	return m.schedules[m.active], nil
}

func (m *MemStore) Active(ctx context.Context) (*schedule.ProducerSchedule, error) {
	rec, err := m.activeRecord()
	if err != nil {
		return nil, err
	}

	return m.loadSchedule(rec)
}

func (m *MemStore) ActiveMasters(ctx context.Context) ([]name.Name, error) {
	s, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}

	return s.Names(), nil
}

func (m *MemStore) IsActiveMaster(ctx context.Context, n name.Name) (bool, error) {
	rec, err := m.activeRecord()
	if err != nil {
		return false, err
	}

	maybe, err := BloomContains(rec.Bloom, n)
	if err != nil {
		return false, errors.Wrap(err, "checking producer bloom")
	}
	if !maybe {
		return false, nil
	}

	s, err := m.loadSchedule(rec)
	if err != nil {
		return false, err
	}

	_, ok := s.Producer(n)
	return ok, nil
}

func (m *MemStore) SetAuthority(ctx context.Context, a schedule.ProducerAuthority) error {
	d, err := a.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encoding authority")
	}

	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	m.authorities[a.ProducerName] = d

	return nil
}

func (m *MemStore) Authority(ctx context.Context, n name.Name) (*schedule.ProducerAuthority, error) {
	m.metaMu.RLock()
	d, ok := m.authorities[n]
	m.metaMu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	a := &schedule.ProducerAuthority{}
	if err := a.UnmarshalBinary(d); err != nil {
		return nil, errors.Wrap(err, "decoding authority")
	}

	return a, nil
}

func (m *MemStore) Authorities(ctx context.Context) ([]schedule.ProducerAuthority, error) {
	m.metaMu.RLock()
	defer m.metaMu.RUnlock()

	out := make([]schedule.ProducerAuthority, 0, len(m.authorities))
	for _, d := range m.authorities {
		a := schedule.ProducerAuthority{}
		if err := a.UnmarshalBinary(d); err != nil {
			return nil, errors.Wrap(err, "decoding authority")
		}
		out = append(out, a)
	}

	sort.Sort(schedule.ProducerAuthorities(out))

	return out, nil
}

func (m *MemStore) HasGenesisApplied() bool {
	m.metaMu.RLock()
	defer m.metaMu.RUnlock()

	return m.genesisApplied
}

func (m *MemStore) ApplyGenesis(ctx context.Context, g *GenesisInfo) error {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	if m.genesisApplied {
		return ErrGenesisApplied
	}

	if _, err := m.storeSchedule(&g.Schedule, g.Authorities, true); err != nil {
		return errors.Wrap(err, "storing genesis schedule")
	}

	m.genesisApplied = true

	return nil
}

func (m *MemStore) Stop() error {
	return nil
}
