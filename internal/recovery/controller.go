package recovery

import (
	"sync"
	"sync/atomic"
)

// Controller coordinates search workers. It owns the cancellation flag and
// the single-assignment result cell.
//
// The flag only ever goes from false to true. Workers poll it once per
// batch, so work already in flight when it flips may still finish.
type Controller struct {
	stopped atomic.Bool
	first   atomic.Pointer[Match]
	found   chan struct{}
	once    sync.Once

	collectAll bool
	mu         sync.Mutex
	matches    []*Match
}

// NewController returns a controller in the searching state. With collectAll
// set, accepted matches are recorded but do not stop the search.
func NewController(collectAll bool) *Controller {
	return &Controller{
		found:      make(chan struct{}),
		collectAll: collectAll,
	}
}

// Stopped reports whether workers should stop picking up new work.
func (c *Controller) Stopped() bool {
	return c.stopped.Load()
}

// Cancel stops the search without recording a result. Safe to call many times.
func (c *Controller) Cancel() {
	c.stopped.Store(true)
}

// Offer publishes an accepted match. It reports whether m became the
// authoritative first result; later offers are kept only in collect-all mode.
func (c *Controller) Offer(m *Match) bool {
	won := c.first.CompareAndSwap(nil, m)

	if c.collectAll {
		c.mu.Lock()
		c.matches = append(c.matches, m)
		c.mu.Unlock()
	} else if won {
		c.stopped.Store(true)
	}

	if won {
		c.once.Do(func() { close(c.found) })
	}
	return won
}

// Found is closed when the first match is published.
func (c *Controller) Found() <-chan struct{} {
	return c.found
}

// Result returns the first published match, or nil while still searching.
func (c *Controller) Result() *Match {
	return c.first.Load()
}

// Matches returns every recorded match, first result first.
func (c *Controller) Matches() []*Match {
	first := c.first.Load()
	if first == nil {
		return nil
	}
	if !c.collectAll {
		return []*Match{first}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Match, 0, len(c.matches))
	out = append(out, first)
	for _, m := range c.matches {
		if m != first {
			out = append(out, m)
		}
	}
	return out
}
