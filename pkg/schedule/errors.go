package schedule

import (
	"github.com/pkg/errors"
	"github.com/tcfw/mastersched/pkg/wire"
)

var (
	// ErrMalformedSchedule is the structural decode failure for every type in
	// this package. Test with errors.Is.
	ErrMalformedSchedule = wire.ErrMalformed

	// ErrNilAuthority is returned when encoding a producer with no authority.
	ErrNilAuthority = errors.New("nil authority")
)
