package capacity

import (
	"testing"

	cm "github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitFor(t *testing.T) {
	assert.Equal(t, uint64(2076594), RateLimitFor(1000, 7, 8, 0).AsNano())
}

func TestMaxSectionNanos(t *testing.T) {
	assert.Equal(t, token.MaxSupply.AsNano(), MaxSectionNanos(0))
	assert.Equal(t, token.MaxSupply.AsNano()/2, MaxSectionNanos(1))
	assert.True(t, MaxSectionNanos(61) > 0)
}

func TestRateLimitOrdering(t *testing.T) {
	oneMB := uint64(1024 * 1024)

	standard := RateLimitFor(oneMB, 7, 8, 0)

	assert.True(t, RateLimitFor(oneMB-1, 7, 8, 0) <= standard, "smaller chunks cost less")
	assert.True(t, RateLimitFor(oneMB, 6, 8, 0) <= standard, "emptier sections are cheaper")

	atTwo := RateLimitFor(oneMB, 7, 8, 2)
	assert.True(t, RateLimitFor(oneMB, 7, 8, 3) <= atTwo, "larger networks are cheaper")

	assert.True(t, RateLimitFor(928, 99, 199, 34) > 0, "cost stays above zero")

	first := RateLimitFor(oneMB, 0, 5, 0)
	assert.True(t, first < token.Token(1000*token.NanosPerToken), "first chunk costs %s", first)
}

func TestRateLimitWithoutAvailableNodes(t *testing.T) {
	assert.Equal(t, MaxSectionNanos(0), RateLimitFor(1000, 5, 5, 0).AsNano())
	assert.Equal(t, MaxSectionNanos(3), RateLimitFor(1000, 0, 0, 3).AsNano())
}

type fakeSection struct {
	adults []*peers.Peer
}

func (f *fakeSection) Adults() []*peers.Peer {
	return f.adults
}

func TestRateLimit(t *testing.T) {
	section := &fakeSection{}
	for i := 0; i < 4; i++ {
		section.adults = append(section.adults, peers.NewPeer(cm.EncodeToString([]byte{byte(i)}), "", ""))
	}

	capacity := NewCapacity()
	rl := NewRateLimit(capacity, section, peers.Prefix{}, cm.NewTestEntry(t, cm.TestLogLevel))

	empty := rl.From(1000)
	assert.Equal(t, RateLimitFor(1000, 0, 4, 0), empty)
	assert.False(t, rl.CheckNetworkStorage())

	require.True(t, rl.IncreaseFullNodeCount(section.adults[0].Name()))
	require.False(t, rl.IncreaseFullNodeCount(section.adults[0].Name()))
	require.True(t, rl.IncreaseFullNodeCount(section.adults[1].Name()))
	assert.False(t, rl.CheckNetworkStorage(), "half full is not above the ratio")

	require.True(t, rl.IncreaseFullNodeCount(section.adults[2].Name()))
	assert.True(t, rl.CheckNetworkStorage())

	assert.True(t, rl.From(1000) > empty)
}

func TestCapacityRetain(t *testing.T) {
	c := NewCapacity()
	c.IncreaseFullNodeCount(0x00000001)
	c.IncreaseFullNodeCount(0x80000001)

	prefix, err := peers.ParsePrefix("1")
	require.NoError(t, err)

	c.Retain(prefix.Matches)
	assert.Equal(t, []uint32{0x80000001}, c.FullNodeNames())
	assert.False(t, c.IsFull(0x00000001))
}
