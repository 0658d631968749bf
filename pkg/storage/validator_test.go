package storage

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
)

func TestIsScheduleValid(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	v := NewScheduleValidator(m)

	assert.NoError(t, v.IsScheduleValid(ctx, newSchedule(t, 0, "master.a")))

	err := v.IsScheduleValid(ctx, &schedule.ProducerSchedule{Version: 1})
	assert.Equal(t, ErrEmptySchedule, err)

	err = v.IsScheduleValid(ctx, newSchedule(t, 1, "master.a", "master.a"))
	assert.Equal(t, ErrDuplicateProducer, err)

	bad := newSchedule(t, 1, "master.a")
	bad.Producers[0].BlockSigningKey = cryptography.NewK1PublicKey(make([]byte, cryptography.CompressedKeyLen))
	err = v.IsScheduleValid(ctx, bad)
	assert.True(t, errors.Is(err, ErrInvalidKey))

	s5 := newSchedule(t, 5, "master.a")
	_, err = m.PutSchedule(ctx, s5)
	require.NoError(t, err)
	require.NoError(t, m.Activate(ctx, 5))

	err = v.IsScheduleValid(ctx, newSchedule(t, 4, "master.b"))
	assert.True(t, errors.Is(err, ErrScheduleVersionStale))

	assert.NoError(t, v.IsScheduleValid(ctx, newSchedule(t, 6, "master.b")))
}

func TestIsAuthorityValid(t *testing.T) {
	ctx := context.Background()
	v := NewScheduleValidator(NewMemStore())

	n := name.MustParse("master.a")

	good := schedule.NewProducerAuthority(n, schedule.BlockSigningAuthorityV0{
		Threshold: 1,
		Keys:      []schedule.KeyWeight{{Key: newKey(t), Weight: 1}},
	})
	assert.NoError(t, v.IsAuthorityValid(ctx, &good))

	unreachable := schedule.NewProducerAuthority(n, schedule.BlockSigningAuthorityV0{
		Threshold: 2,
		Keys:      []schedule.KeyWeight{{Key: newKey(t), Weight: 1}},
	})
	assert.True(t, errors.Is(v.IsAuthorityValid(ctx, &unreachable), ErrInvalidAuthority))

	missing := schedule.ProducerAuthority{ProducerName: n}
	assert.True(t, errors.Is(v.IsAuthorityValid(ctx, &missing), ErrInvalidAuthority))

	offCurve := schedule.NewProducerAuthority(n, schedule.BlockSigningAuthorityV0{
		Threshold: 1,
		Keys: []schedule.KeyWeight{{
			Key:    cryptography.NewK1PublicKey(make([]byte, cryptography.CompressedKeyLen)),
			Weight: 1,
		}},
	})
	assert.True(t, errors.Is(v.IsAuthorityValid(ctx, &offCurve), ErrInvalidKey))
}
