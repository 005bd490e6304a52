package node

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// MaxStorageUsageRatio is the share of its capacity an adult fills before it
// reports itself full.
const MaxStorageUsageRatio = 0.8

// UsedSpace tracks how much of the node's capacity is in use.
type UsedSpace struct {
	sync.Mutex
	max  uint64
	used uint64
}

// NewUsedSpace ...
func NewUsedSpace(max uint64) *UsedSpace {
	return &UsedSpace{max: max}
}

// Increase ...
func (u *UsedSpace) Increase(n uint64) {
	u.Lock()
	defer u.Unlock()
	u.used += n
}

// Reset is called on every stage change.
func (u *UsedSpace) Reset() {
	u.Lock()
	defer u.Unlock()
	u.used = 0
}

// Used ...
func (u *UsedSpace) Used() uint64 {
	u.Lock()
	defer u.Unlock()
	return u.used
}

// Max ...
func (u *UsedSpace) Max() uint64 {
	return u.max
}

// Ratio returns the used share of the capacity. A node without capacity is
// always full.
func (u *UsedSpace) Ratio() float64 {
	u.Lock()
	defer u.Unlock()
	if u.max == 0 {
		return 1
	}
	return float64(u.used) / float64(u.max)
}

// AdultDuties are run by nodes in the Adult stage.
type AdultDuties struct {
	usedSpace    *UsedSpace
	reportedFull bool
	logger       *logrus.Entry
}

// NewAdultDuties ...
func NewAdultDuties(usedSpace *UsedSpace, logger *logrus.Entry) *AdultDuties {
	return &AdultDuties{
		usedSpace: usedSpace,
		logger:    logger.WithField("duties", "adult"),
	}
}

// Process runs an adult duty.
func (a *AdultDuties) Process(duty AdultDuty) (NetworkDuties, error) {
	switch d := duty.(type) {
	case RecordUsage:
		a.usedSpace.Increase(d.Bytes)
		return a.checkStorage(), nil
	case CheckStorage:
		return a.checkStorage(), nil
	default:
		return nil, unknownDuty(duty)
	}
}

func (a *AdultDuties) checkStorage() NetworkDuties {
	ratio := a.usedSpace.Ratio()
	if a.reportedFull || ratio < MaxStorageUsageRatio {
		return nil
	}

	a.logger.WithFields(logrus.Fields{
		"used":  a.usedSpace.Used(),
		"max":   a.usedSpace.Max(),
		"ratio": ratio,
	}).Warn("Storage full")

	a.reportedFull = true

	return NetworkDuties{StorageFull{}}
}
