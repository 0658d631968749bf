package storage

import "github.com/pkg/errors"

var (
	ErrNotFound = errors.New("not found")

	ErrNoActiveSchedule     = errors.New("no active schedule")
	ErrScheduleVersionStale = errors.New("schedule version is older than the active schedule")
	ErrScheduleExists       = errors.New("a different schedule with this version already exists")
	ErrEmptySchedule        = errors.New("schedule has no producers")
	ErrDuplicateProducer    = errors.New("producer appears more than once in schedule")
	ErrInvalidAuthority     = errors.New("block signing authority is invalid")
	ErrInvalidKey           = errors.New("producer key is invalid")

	ErrGenesisApplied = errors.New("genesis already applied")
)
