package core

import (
	"sync"
	"testing"
)

func TestLogicalClock_StrictlyIncreasing(t *testing.T) {
	clock := NewLogicalClock()

	prev := clock.Tick()
	for i := 0; i < 1000; i++ {
		next := clock.Tick()
		if next <= prev {
			t.Fatalf("Expected strictly increasing ticks, got %d after %d", next, prev)
		}
		prev = next
	}
}

func TestLogicalClock_Concurrent(t *testing.T) {
	clock := NewLogicalClock()

	const goroutines = 8
	const ticksEach = 1000

	var wg sync.WaitGroup
	seen := make([][]int64, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ticks := make([]int64, 0, ticksEach)
			for i := 0; i < ticksEach; i++ {
				ticks = append(ticks, clock.Tick())
			}
			seen[g] = ticks
		}(g)
	}
	wg.Wait()

	all := make(map[int64]bool)
	for _, ticks := range seen {
		for _, tick := range ticks {
			if all[tick] {
				t.Fatalf("Duplicate tick %d", tick)
			}
			all[tick] = true
		}
	}
}

func TestWallClock_StrictlyIncreasing(t *testing.T) {
	clock := NewWallClock()

	prev := clock.Tick()
	for i := 0; i < 1000; i++ {
		next := clock.Tick()
		if next <= prev {
			t.Fatalf("Expected strictly increasing ticks, got %d after %d", next, prev)
		}
		prev = next
	}
}
