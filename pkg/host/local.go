package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tcfw/mastersched/internal/utils/logging"
	"github.com/tcfw/mastersched/pkg/name"
)

var (
	_ Host = (*Local)(nil)
)

// AbortError is raised by a failed assertion.
type AbortError struct {
	Message string
	Code    uint64
	HasCode bool
}

func (e *AbortError) Error() string {
	if e.HasCode {
		return fmt.Sprintf("assertion failed with code %d", e.Code)
	}
	return "assertion failure with message: " + e.Message
}

// ExitError unwinds a unit of execution started with Local.Execute.
type ExitError struct {
	Code int32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit with code %d", e.Code)
}

// MastersSource supplies the active producer names, typically a store.
type MastersSource interface {
	ActiveMasters(context.Context) ([]name.Name, error)
}

type Option func(*Local) error

func WithClock(clock func() time.Time) Option {
	return func(l *Local) error {
		l.clock = clock
		return nil
	}
}

func WithFeatures(digests ...Checksum256) Option {
	return func(l *Local) error {
		for _, d := range digests {
			l.features[d] = struct{}{}
		}
		return nil
	}
}

func WithSender(n name.Name) Option {
	return func(l *Local) error {
		l.sender = n
		return nil
	}
}

func WithMastersSource(s MastersSource) Option {
	return func(l *Local) error {
		l.masters = s
		return nil
	}
}

// Local is an in-process Host. Aborts and exits unwind the calling
// goroutine with a panic that Execute turns back into a result.
type Local struct {
	ctx   context.Context
	clock func() time.Time

	mu       sync.RWMutex
	features map[Checksum256]struct{}
	sender   name.Name
	masters  MastersSource
}

func NewLocal(ctx context.Context, opts ...Option) (*Local, error) {
	l := &Local{
		ctx:      ctx,
		clock:    time.Now,
		features: make(map[Checksum256]struct{}),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Execute runs fn as one unit of execution. It returns the exit code if fn
// called Exit, or an *AbortError if an assertion failed. Other panics are
// propagated.
func (l *Local) Execute(fn func()) (code int32, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		switch v := r.(type) {
		case *AbortError:
			err = v
		case *ExitError:
			code = v.Code
		default:
			panic(r)
		}
	}()

	fn()

	return 0, nil
}

func (l *Local) Assert(test bool, msg string) {
	if !test {
		l.abort(&AbortError{Message: msg})
	}
}

func (l *Local) AssertMessage(test bool, msg []byte) {
	if !test {
		l.abort(&AbortError{Message: string(msg)})
	}
}

func (l *Local) AssertCode(test bool, code uint64) {
	if !test {
		l.abort(&AbortError{Code: code, HasCode: true})
	}
}

func (l *Local) abort(e *AbortError) {
	logging.Entry().WithField("code", e.Code).Debug(e.Error())
	panic(e)
}

func (l *Local) Exit(code int32) {
	logging.Entry().WithField("code", code).Debug("execution exited")
	panic(&ExitError{Code: code})
}

func (l *Local) CurrentTime() int64 {
	return int64(NewTimePoint(l.clock()))
}

func (l *Local) ActivateFeature(digest Checksum256) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.features[digest] = struct{}{}
}

func (l *Local) IsFeatureActivated(digest Checksum256) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.features[digest]
	return ok
}

func (l *Local) SetSender(n name.Name) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sender = n
}

func (l *Local) GetSender() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.sender.Uint64()
}

// ActiveMasters returns nil when no source is configured or it fails.
func (l *Local) ActiveMasters() []name.Name {
	l.mu.RLock()
	src := l.masters
	l.mu.RUnlock()

	if src == nil {
		return nil
	}

	masters, err := src.ActiveMasters(l.ctx)
	if err != nil {
		logging.WithError(err).Warn("reading active masters")
		return nil
	}

	return masters
}
