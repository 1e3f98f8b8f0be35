package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32

	const callers = 10
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	results := make([]any, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			val, err, _ := g.Do("key", func() (any, error) {
				executions.Add(1)
				// Hold the flight open so the other callers join it.
				time.Sleep(20 * time.Millisecond)
				return "value", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = val
		}(i)
	}

	close(start)
	wg.Wait()

	if n := executions.Load(); n != 1 {
		t.Fatalf("expected 1 execution, got %d", n)
	}
	for i, val := range results {
		if val != "value" {
			t.Fatalf("caller %d got %v", i, val)
		}
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	a, err, shared := g.Do("a", func() (any, error) { return 1, nil })
	if err != nil || shared {
		t.Fatalf("unexpected result: err=%v shared=%v", err, shared)
	}
	b, _, _ := g.Do("b", func() (any, error) { return 2, nil })

	if a != 1 || b != 2 {
		t.Fatalf("unexpected values a=%v b=%v", a, b)
	}
}
