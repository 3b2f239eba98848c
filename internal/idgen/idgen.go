package idgen

import (
	"sync"
	"time"
)

// Generator produces ticket ids.
type Generator interface {
	Next() int64
}

// Clock generates millisecond-timestamp ids with a monotonic bump when two
// calls land on the same millisecond, so ids stay sortable by creation time
// but never repeat within a process.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
