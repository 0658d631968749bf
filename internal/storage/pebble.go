package storage

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/ipfs/go-cid"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/tcfw/mastersched/internal/utils/logging"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/tcfw/mastersched/pkg/storage"
)

var (
	_ storage.Store = (*PebbleStore)(nil)
)

const (
	cacheSize = 1 << 20 * 100

	tableSep byte = ':'

	memDir = "mastersched"
)

type metadataKeyType byte

const (
	objectTPrefix metadataKeyType = iota + 1
	scheduleTPrefix
	activeTPrefix
	authorityTPrefix
	genesisTPrefix
)

// PebbleStore persists schedules, authorities and the active version in a
// pebble database.
type PebbleStore struct {
	db *pebble.DB

	// serialises read-then-write sequences
	mu sync.Mutex
}

// NewPebbleStore opens the database in dir, retrying up to attempts times
// while another process holds the lock. An empty dir opens an in-memory
// database.
func NewPebbleStore(ctx context.Context, dir string, attempts int) (*PebbleStore, error) {
	if attempts < 1 {
		attempts = 1
	}

	bo := &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 5 * time.Second,
	}

	var (
		db  *pebble.DB
		err error
	)

	for i := 0; i < attempts; i++ {
		db, err = openPebble(dir)
		if err == nil {
			return &PebbleStore{db: db}, nil
		}

		if i == attempts-1 {
			break
		}

		d := bo.Duration()
		logging.WithError(err).
			WithField("waiting", d).
			WithField("attempt", i+1).
			Warn("opening store")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	return nil, errors.Wrap(err, "opening pebble store")
}

func openPebble(dir string) (*pebble.DB, error) {
	c := pebble.NewCache(cacheSize)
	tc := pebble.NewTableCache(c, 16, 100)
	defer tc.Unref()
	defer c.Unref()

	opts := &pebble.Options{Cache: c, TableCache: tc}
	if dir == "" {
		opts.FS = vfs.NewMem()
		dir = memDir
	}

	return pebble.Open(dir, opts)
}

func (s *PebbleStore) get(r pebble.Reader, key []byte) ([]byte, error) {
	v, done, err := r.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	defer done.Close()

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *PebbleStore) PutSchedule(ctx context.Context, ps *schedule.ProducerSchedule) (cid.Cid, error) {
	return s.StoreSchedule(ctx, ps, nil, false)
}

// StoreSchedule writes the schedule, its authorities and the activation in
// one batch.
func (s *PebbleStore) StoreSchedule(ctx context.Context, ps *schedule.ProducerSchedule, auths []schedule.ProducerAuthority, activate bool) (cid.Cid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewIndexedBatch()
	defer b.Close()

	id, err := s.putSchedule(b, ps, auths)
	if err != nil {
		return cid.Undef, err
	}

	if activate {
		if err := s.activate(b, ps.Version); err != nil {
			return cid.Undef, err
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return cid.Undef, errors.Wrap(err, "committing schedule")
	}

	return id, nil
}

func (s *PebbleStore) putSchedule(b *pebble.Batch, ps *schedule.ProducerSchedule, auths []schedule.ProducerAuthority) (cid.Cid, error) {
	d, rec, err := storage.EncodeSchedule(ps, auths)
	if err != nil {
		return cid.Undef, err
	}

	existing, err := s.record(b, ps.Version)
	if err == nil {
		if existing.SameAs(rec) {
			return rec.ID, nil
		}
		return cid.Undef, errors.Wrapf(storage.ErrScheduleExists, "version %d", ps.Version)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return cid.Undef, err
	}

	rb, err := rec.Marshal()
	if err != nil {
		return cid.Undef, err
	}

	if err := b.Set(typedKey(objectTPrefix, string(rec.ID.Bytes())), d, nil); err != nil {
		return cid.Undef, errors.Wrap(err, "storing schedule object")
	}

	if err := b.Set(typedKey(scheduleTPrefix, versionPart(ps.Version)), rb, nil); err != nil {
		return cid.Undef, errors.Wrap(err, "storing schedule record")
	}

	logging.Entry().
		WithField("version", ps.Version).
		WithField("cid", rec.ID.String()).
		Debug("stored schedule")

	return rec.ID, nil
}

func (s *PebbleStore) record(r pebble.Reader, version uint32) (*storage.ScheduleRecord, error) {
	d, err := s.get(r, typedKey(scheduleTPrefix, versionPart(version)))
	if err != nil {
		return nil, err
	}

	rec := &storage.ScheduleRecord{}
	if err := rec.Unmarshal(d); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *PebbleStore) loadSchedule(r pebble.Reader, rec *storage.ScheduleRecord) (*schedule.ProducerSchedule, error) {
	d, err := s.get(r, typedKey(objectTPrefix, string(rec.ID.Bytes())))
	if err != nil {
		return nil, err
	}

	return storage.DecodeSchedule(d, rec.ID)
}

func (s *PebbleStore) GetSchedule(ctx context.Context, version uint32) (*schedule.ProducerSchedule, error) {
	rec, err := s.record(s.db, version)
	if err != nil {
		return nil, err
	}

	return s.loadSchedule(s.db, rec)
}

func (s *PebbleStore) Activate(ctx context.Context, version uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewIndexedBatch()
	defer b.Close()

	if err := s.activate(b, version); err != nil {
		return err
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "committing active version")
	}

	return nil
}

// activate sets the active version and replaces the authority prefix with
// the authorities stored for that version.
func (s *PebbleStore) activate(b *pebble.Batch, version uint32) error {
	rec, err := s.record(b, version)
	if err != nil {
		return err
	}

	current, err := s.activeVersion(b)
	if err == nil && version < current {
		return errors.Wrapf(storage.ErrScheduleVersionStale, "activating %d over %d", version, current)
	} else if err != nil && !errors.Is(err, storage.ErrNoActiveSchedule) {
		return err
	}

	if err := b.Set(typedKey(activeTPrefix), []byte(versionPart(version)), nil); err != nil {
		return errors.Wrap(err, "storing active version")
	}

	if err := b.DeleteRange([]byte{byte(authorityTPrefix)}, []byte{byte(authorityTPrefix) + 1}, nil); err != nil {
		return errors.Wrap(err, "clearing authorities")
	}

	for _, a := range rec.Authorities {
		if err := s.setAuthority(b, a, nil); err != nil {
			return err
		}
	}

	return nil
}

func (s *PebbleStore) activeVersion(r pebble.Reader) (uint32, error) {
	d, err := s.get(r, typedKey(activeTPrefix))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, storage.ErrNoActiveSchedule
		}
		return 0, errors.Wrap(err, "getting active version")
	}

	if len(d) != 4 {
		return 0, errors.Errorf("corrupt active version of %d bytes", len(d))
	}

	return binary.BigEndian.Uint32(d), nil
}

func (s *PebbleStore) activeRecord() (*storage.ScheduleRecord, error) {
	v, err := s.activeVersion(s.db)
	if err != nil {
		return nil, err
	}

	return s.record(s.db, v)
}

func (s *PebbleStore) Active(ctx context.Context) (*schedule.ProducerSchedule, error) {
	rec, err := s.activeRecord()
	if err != nil {
		return nil, err
	}

	return s.loadSchedule(s.db, rec)
}

func (s *PebbleStore) ActiveMasters(ctx context.Context) ([]name.Name, error) {
	ps, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}

	return ps.Names(), nil
}

func (s *PebbleStore) IsActiveMaster(ctx context.Context, n name.Name) (bool, error) {
	rec, err := s.activeRecord()
	if err != nil {
		return false, err
	}

	maybe, err := storage.BloomContains(rec.Bloom, n)
	if err != nil {
		return false, errors.Wrap(err, "checking producer bloom")
	}
	if !maybe {
		return false, nil
	}

	ps, err := s.loadSchedule(s.db, rec)
	if err != nil {
		return false, err
	}

	_, ok := ps.Producer(n)
	return ok, nil
}

func (s *PebbleStore) SetAuthority(ctx context.Context, a schedule.ProducerAuthority) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setAuthority(s.db, a, pebble.Sync)
}

func (s *PebbleStore) setAuthority(w pebble.Writer, a schedule.ProducerAuthority, opts *pebble.WriteOptions) error {
	d, err := a.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encoding authority")
	}

	if err := w.Set(typedKey(authorityTPrefix, namePart(a.ProducerName)), d, opts); err != nil {
		return errors.Wrap(err, "storing authority")
	}

	return nil
}

func (s *PebbleStore) Authority(ctx context.Context, n name.Name) (*schedule.ProducerAuthority, error) {
	d, err := s.get(s.db, typedKey(authorityTPrefix, namePart(n)))
	if err != nil {
		return nil, err
	}

	a := &schedule.ProducerAuthority{}
	if err := a.UnmarshalBinary(d); err != nil {
		return nil, errors.Wrap(err, "decoding authority")
	}

	return a, nil
}

// Authorities iterates the authority prefix. Name keys are big endian so
// iteration order is name order.
func (s *PebbleStore) Authorities(ctx context.Context) ([]schedule.ProducerAuthority, error) {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{byte(authorityTPrefix)},
		UpperBound: []byte{byte(authorityTPrefix) + 1},
	})
	defer iter.Close()

	list := []schedule.ProducerAuthority{}

	for iter.First(); iter.Valid(); iter.Next() {
		a := schedule.ProducerAuthority{}
		if err := a.UnmarshalBinary(iter.Value()); err != nil {
			return nil, errors.Wrap(err, "decoding authority")
		}
		list = append(list, a)
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating authorities")
	}

	return list, nil
}

func (s *PebbleStore) HasGenesisApplied() bool {
	_, err := s.get(s.db, typedKey(genesisTPrefix))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.WithError(err).Warn("failed reading genesis prefix")
		}
		return false
	}

	return true
}

// ApplyGenesis stores and activates the genesis schedule with its
// authorities in a single batch.
func (s *PebbleStore) ApplyGenesis(ctx context.Context, g *storage.GenesisInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.HasGenesisApplied() {
		return storage.ErrGenesisApplied
	}

	batch := s.db.NewIndexedBatch()
	defer batch.Close()

	if _, err := s.putSchedule(batch, &g.Schedule, g.Authorities); err != nil {
		return errors.Wrap(err, "storing genesis schedule")
	}

	if err := s.activate(batch, g.Schedule.Version); err != nil {
		return errors.Wrap(err, "activating genesis schedule")
	}

	if err := batch.Set(typedKey(genesisTPrefix), []byte(g.ChainID), nil); err != nil {
		return errors.Wrap(err, "storing genesis prefix")
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "applying batch")
	}

	logging.Entry().
		WithField("chain", g.ChainID).
		WithField("version", g.Schedule.Version).
		Info("applied genesis")

	return nil
}

func (s *PebbleStore) Stop() error {
	return s.db.Close()
}

func versionPart(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return string(b[:])
}

func namePart(n name.Name) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n.Uint64())
	return string(b[:])
}

func typedKey(kType metadataKeyType, parts ...string) []byte {
	n := 1
	for _, p := range parts {
		n += len(p) + 1 //add sep as well
	}

	k := make([]byte, 0, n)
	k = append(k, byte(kType))
	for i, p := range parts {
		if i > 0 {
			k = append(k, tableSep)
		}
		k = append(k, []byte(p)...)
	}

	return k
}
