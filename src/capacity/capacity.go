package capacity

import (
	"sort"
	"sync"
)

// Capacity records which adults of the section have run out of space.
type Capacity struct {
	sync.RWMutex
	full map[uint32]struct{}
}

// NewCapacity ...
func NewCapacity() *Capacity {
	return &Capacity{
		full: make(map[uint32]struct{}),
	}
}

// IncreaseFullNodeCount marks the node as full. It returns false if the node
// was already known to be full.
func (c *Capacity) IncreaseFullNodeCount(node uint32) bool {
	c.Lock()
	defer c.Unlock()

	if _, ok := c.full[node]; ok {
		return false
	}
	c.full[node] = struct{}{}
	return true
}

// FullNodes returns the number of full nodes.
func (c *Capacity) FullNodes() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.full)
}

// IsFull ...
func (c *Capacity) IsFull(node uint32) bool {
	c.RLock()
	defer c.RUnlock()
	_, ok := c.full[node]
	return ok
}

// FullNodeNames returns the names of the full nodes in ascending order.
func (c *Capacity) FullNodeNames() []uint32 {
	c.RLock()
	defer c.RUnlock()

	res := make([]uint32, 0, len(c.full))
	for n := range c.full {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Retain forgets the full nodes for which keep returns false. It is used when
// the section splits and half the adults move to the sibling section.
func (c *Capacity) Retain(keep func(uint32) bool) {
	c.Lock()
	defer c.Unlock()

	for n := range c.full {
		if !keep(n) {
			delete(c.full, n)
		}
	}
}
