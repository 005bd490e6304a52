package capacity

import (
	"math"
	"sync"

	"github.com/mosaicnetworks/vault/src/peers"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/sirupsen/logrus"
)

const (
	// MaxChunkSize is the largest piece of data a client can store at once.
	MaxChunkSize = 1_000_000
	// MaxNetworkStorageRatio is the share of full adults above which the
	// section asks for more nodes.
	MaxNetworkStorageRatio = 0.5
)

// Section gives access to the adults currently known to the section.
type Section interface {
	Adults() []*peers.Peer
}

// RateLimit computes the store cost of writes handled by the section.
type RateLimit struct {
	sync.RWMutex

	capacity *Capacity
	section  Section
	prefix   peers.Prefix
	logger   *logrus.Entry
}

// NewRateLimit ...
func NewRateLimit(capacity *Capacity, section Section, prefix peers.Prefix, logger *logrus.Entry) *RateLimit {
	return &RateLimit{
		capacity: capacity,
		section:  section,
		prefix:   prefix,
		logger:   logger.WithField("component", "rate_limit"),
	}
}

// From returns the cost of storing bytes in the section.
func (r *RateLimit) From(bytes uint64) token.Token {
	r.RLock()
	prefixLen := r.prefix.BitCount()
	r.RUnlock()

	all := len(r.section.Adults())
	full := r.capacity.FullNodes()

	return RateLimitFor(bytes, full, all, prefixLen)
}

// IncreaseFullNodeCount ...
func (r *RateLimit) IncreaseFullNodeCount(node uint32) bool {
	return r.capacity.IncreaseFullNodeCount(node)
}

// CheckNetworkStorage reports whether the share of full adults crossed
// MaxNetworkStorageRatio.
func (r *RateLimit) CheckNetworkStorage() bool {
	all := len(r.section.Adults())
	full := r.capacity.FullNodes()

	ratio := 1.0
	if all > 0 {
		ratio = float64(full) / float64(all)
	}

	r.logger.WithFields(logrus.Fields{
		"adults": all,
		"full":   full,
		"ratio":  ratio,
	}).Info("Checking network storage")

	return ratio > MaxNetworkStorageRatio
}

// SetPrefix is called when the section's prefix changes.
func (r *RateLimit) SetPrefix(prefix peers.Prefix) {
	r.Lock()
	defer r.Unlock()

	r.prefix = prefix
	r.capacity.Retain(prefix.Matches)
}

// Prefix ...
func (r *RateLimit) Prefix() peers.Prefix {
	r.RLock()
	defer r.RUnlock()
	return r.prefix
}

// RateLimitFor is the store cost formula. A section without any available
// adult charges its whole supply share.
func RateLimitFor(bytes uint64, fullNodes, allNodes, prefixLen int) token.Token {
	available := allNodes - fullNodes
	if available <= 0 {
		return token.FromNano(MaxSectionNanos(prefixLen))
	}

	supplyDemand := 0.001 +
		math.Pow(1/float64(available), 8) +
		math.Pow(float64(fullNodes)/float64(allNodes), 88)

	size := float64(bytes) / MaxChunkSize
	dataSize := math.Pow(size, 2) + size

	steepness := float64(prefixLen) + 1
	source := steepness * math.Sqrt(float64(MaxSectionNanos(prefixLen)))

	cost := math.Round(source * dataSize * supplyDemand)

	sectionShare := float64(MaxSectionNanos(prefixLen))
	if cost > sectionShare {
		return token.FromNano(MaxSectionNanos(prefixLen))
	}

	return token.FromNano(uint64(cost))
}

// MaxSectionNanos is the share of the total supply a section with the given
// prefix length is responsible for.
func MaxSectionNanos(prefixLen int) uint64 {
	return uint64(math.Floor(float64(token.MaxSupply) / math.Pow(2, float64(prefixLen))))
}

// FullNodes ...
func (r *RateLimit) FullNodes() int {
	return r.capacity.FullNodes()
}
