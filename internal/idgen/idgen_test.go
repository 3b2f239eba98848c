package idgen

import (
	"sync"
	"testing"
	"time"
)

func TestNextIsStrictlyIncreasing(t *testing.T) {
	gen := NewClock()

	prev := gen.Next()
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestNextBumpsOnFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1700000000000)
	gen := &Clock{now: func() time.Time { return frozen }}

	a := gen.Next()
	b := gen.Next()
	if a != frozen.UnixMilli() {
		t.Fatalf("first id = %d, want %d", a, frozen.UnixMilli())
	}
	if b != a+1 {
		t.Fatalf("second id on same millisecond = %d, want %d", b, a+1)
	}
}

func TestNextIsUniqueUnderConcurrency(t *testing.T) {
	gen := NewClock()

	const workers, perWorker = 8, 500
	ids := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- gen.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers*perWorker)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
