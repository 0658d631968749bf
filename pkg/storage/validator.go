package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/schedule"
)

type Validator interface {
	IsScheduleValid(context.Context, *schedule.ProducerSchedule) error
	IsAuthorityValid(context.Context, *schedule.ProducerAuthority) error
}

type ScheduleValidator struct {
	s Store
}

func NewScheduleValidator(s Store) *ScheduleValidator {
	return &ScheduleValidator{s}
}

// IsScheduleValid checks s can be proposed on top of the currently active
// schedule.
func (v *ScheduleValidator) IsScheduleValid(ctx context.Context, s *schedule.ProducerSchedule) error {
	if len(s.Producers) == 0 {
		return ErrEmptySchedule
	}

	if !s.HasUniqueNames() {
		return ErrDuplicateProducer
	}

	for _, p := range s.Producers {
		if err := p.BlockSigningKey.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidKey, "producer %s: %s", p.ProducerName, err)
		}
	}

	active, err := v.s.Active(ctx)
	if err != nil && !errors.Is(err, ErrNoActiveSchedule) {
		return errors.Wrap(err, "getting active schedule")
	}
	if active != nil && s.Version < active.Version {
		return errors.Wrapf(ErrScheduleVersionStale, "version %d, active %d", s.Version, active.Version)
	}

	return nil
}

func (v *ScheduleValidator) IsAuthorityValid(ctx context.Context, a *schedule.ProducerAuthority) error {
	if a.Authority == nil || !a.IsValid() {
		return errors.Wrapf(ErrInvalidAuthority, "producer %s", a.ProducerName)
	}

	if auth, ok := a.Authority.(schedule.BlockSigningAuthorityV0); ok {
		for _, k := range auth.Keys {
			if err := k.Key.Validate(); err != nil {
				return errors.Wrapf(ErrInvalidKey, "producer %s: %s", a.ProducerName, err)
			}
		}
	}

	return nil
}
