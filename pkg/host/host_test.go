package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tcfw/mastersched/pkg/host"
	"github.com/tcfw/mastersched/pkg/host/mocks"
	"github.com/tcfw/mastersched/pkg/name"
)

func TestCheckOnlyCallsHostOnFailure(t *testing.T) {
	h := mocks.NewHost(t)
	h.On("Assert", false, "bad thing").Once()

	host.Check(h, true, "fine")
	host.Check(h, false, "bad thing")
}

func TestCheckNTruncates(t *testing.T) {
	h := mocks.NewHost(t)
	h.On("AssertMessage", false, []byte("bad")).Once()
	h.On("AssertMessage", false, []byte("short")).Once()

	host.CheckN(h, true, "ignored", 3)
	host.CheckN(h, false, "bad thing", 3)
	host.CheckN(h, false, "short", 100)
}

func TestCheckCode(t *testing.T) {
	h := mocks.NewHost(t)
	h.On("AssertCode", false, uint64(42)).Once()

	host.CheckCode(h, true, 1)
	host.CheckCode(h, false, 42)
}

func TestTimeWrappers(t *testing.T) {
	h := mocks.NewHost(t)

	// 2000-01-01T00:00:01.250Z
	h.On("CurrentTime").Return(int64(946684801250000))

	assert.Equal(t, host.TimePoint(946684801250000), host.CurrentTimePoint(h))
	assert.Equal(t, host.BlockTimestamp(2), host.CurrentBlockTime(h))
}

func TestSenderAndMasters(t *testing.T) {
	h := mocks.NewHost(t)

	alice := name.MustParse("alice")
	masters := []name.Name{name.MustParse("m1"), name.MustParse("m2")}

	h.On("GetSender").Return(alice.Uint64())
	h.On("ActiveMasters").Return(masters)

	assert.Equal(t, alice, host.GetSender(h))
	assert.Equal(t, masters, host.GetActiveMasters(h))
}

func TestEmptySender(t *testing.T) {
	h := mocks.NewHost(t)
	h.On("GetSender").Return(uint64(0))

	assert.True(t, host.GetSender(h).IsEmpty())
}

func TestFeatureWrapper(t *testing.T) {
	h := mocks.NewHost(t)

	var d host.Checksum256
	d[0] = 1

	h.On("IsFeatureActivated", d).Return(true)

	assert.True(t, host.IsFeatureActivated(h, d))
}
