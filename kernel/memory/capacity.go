package memory

import "golang.org/x/sync/semaphore"

// capacity limits the number of execution units that may be live at once.
type capacity struct {
	n   int
	sem *semaphore.Weighted
}

// newCapacity returns a capacity that allows n live units, where zero means
// no limit.
func newCapacity(n int) capacity {
	if n == 0 {
		return capacity{}
	}

	return capacity{
		n,
		semaphore.NewWeighted(int64(n)),
	}
}

// Limit returns the number of units that may be live at once.
//
// It returns 0 if there is no limit.
func (c *capacity) Limit() int {
	if c.sem == nil {
		return 0
	}

	return c.n
}

// Acquire reserves room for one unit.
//
// It never blocks; allocation beyond capacity is refused, not queued.
func (c *capacity) Acquire() bool {
	if c.sem == nil {
		return true
	}

	return c.sem.TryAcquire(1)
}

// Release returns the room reserved for a unit that has terminated.
func (c *capacity) Release() {
	if c.sem != nil {
		c.sem.Release(1)
	}
}
