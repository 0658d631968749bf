//go:generate go run github.com/vektra/mockery/v2 --name Host

// Package host abstracts the runtime primitives a contract can call:
// assertions, exit, the current block time, protocol feature activation,
// the inline action sender and the active producer list.
package host

import (
	"github.com/tcfw/mastersched/pkg/name"
)

// Host is the narrow ABI exposed by the execution runtime. Assert*, and Exit
// do not return when they abort.
type Host interface {
	Assert(test bool, msg string)
	AssertMessage(test bool, msg []byte)
	AssertCode(test bool, code uint64)

	Exit(code int32)

	// CurrentTime is the current block time in microseconds since 1970.
	CurrentTime() int64

	IsFeatureActivated(digest Checksum256) bool

	// GetSender returns the raw name of the account that sent the current
	// inline action, or 0.
	GetSender() uint64

	ActiveMasters() []name.Name
}

// Check aborts through h with msg when pred is false.
func Check(h Host, pred bool, msg string) {
	if !pred {
		h.Assert(false, msg)
	}
}

// CheckN aborts through h with the first n bytes of msg when pred is false.
func CheckN(h Host, pred bool, msg string, n int) {
	if !pred {
		if n > len(msg) {
			n = len(msg)
		}
		if n < 0 {
			n = 0
		}
		h.AssertMessage(false, []byte(msg[:n]))
	}
}

// CheckCode aborts through h with a numeric code when pred is false.
func CheckCode(h Host, pred bool, code uint64) {
	if !pred {
		h.AssertCode(false, code)
	}
}

// Exit stops execution without failing, skipping deferred cleanup.
func Exit(h Host, code int32) {
	h.Exit(code)
}

func CurrentTimePoint(h Host) TimePoint {
	return TimePoint(h.CurrentTime())
}

func CurrentBlockTime(h Host) BlockTimestamp {
	return NewBlockTimestamp(CurrentTimePoint(h))
}

func IsFeatureActivated(h Host, digest Checksum256) bool {
	return h.IsFeatureActivated(digest)
}

// GetSender returns the sender of the current inline action, or the empty
// name when not called from an inline action.
func GetSender(h Host) name.Name {
	return name.Name(h.GetSender())
}

// GetActiveMasters returns the producer names of the active schedule, in
// rotation order.
func GetActiveMasters(h Host) []name.Name {
	return h.ActiveMasters()
}
