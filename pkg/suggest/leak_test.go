//go:build test

package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var longPatterns = [][]string{
	{"a", "ab", "abc", "abcd", "abcde"},
	{"h", "he", "hel", "hell", "hello"},
	{"p", "pr", "pro", "prog", "progr", "progra", "program"},
	{"i", "in", "int", "inte", "inter", "intern", "interna", "internat", "internati", "internatio", "internation"},
}

// leakVocabulary grows every pattern into a few hundred words so queries walk real subtrees.
func leakVocabulary() []Entry {
	var entries []Entry
	for _, pattern := range longPatterns {
		stem := pattern[len(pattern)-1]
		for i := 0; i < 300; i++ {
			entries = append(entries, Entry{Word: fmt.Sprintf("%s%d", stem, i), Frequency: i})
		}
	}
	return entries
}

func loadedCompleter(t *testing.T, backend string) *Completer {
	t.Helper()
	idx, err := NewIndex(backend)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCompleter(WithIndex(idx))
	if _, err := c.Load(leakVocabulary()); err != nil {
		t.Fatal(err)
	}
	return c
}

func retainedPerOp(baseline runtime.MemStats, ops int) float64 {
	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	return float64(int64(final.HeapAlloc)-int64(baseline.HeapAlloc)) / float64(ops)
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, backend := range []string{BackendTrie, BackendPatricia} {
		for _, iterations := range []int{100, 500, 1000} {
			t.Run(fmt.Sprintf("%s_iterations_%d", backend, iterations), func(t *testing.T) {
				c := loadedCompleter(t, backend)

				var baseline runtime.MemStats
				runtime.GC()
				runtime.ReadMemStats(&baseline)

				ops := 0
				for i := 0; i < iterations; i++ {
					for _, pattern := range longPatterns {
						for _, prefix := range pattern {
							if _, err := c.Complete(prefix, 10); err != nil {
								t.Fatal(err)
							}
							ops++
						}
					}
				}

				perOp := retainedPerOp(baseline, ops)
				t.Logf("backend=%s ops=%d retained_per_op=%.2f bytes", backend, ops, perOp)
				if perOp > 100 {
					t.Errorf("completions retain memory: %.2f bytes per op", perOp)
				}
			})
		}
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", cfg.workers, cfg.iterationsPerWorker), func(t *testing.T) {
			c := loadedCompleter(t, BackendTrie)

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)

			var wg sync.WaitGroup
			for w := 0; w < cfg.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for iter := 0; iter < cfg.iterationsPerWorker; iter++ {
						for _, pattern := range longPatterns {
							for _, prefix := range pattern {
								_, _ = c.Complete(prefix, 10)
							}
						}
					}
				}()
			}
			wg.Wait()

			ops := cfg.workers * cfg.iterationsPerWorker * 28
			perOp := retainedPerOp(baseline, ops)
			t.Logf("workers=%d ops=%d retained_per_op=%.2f bytes", cfg.workers, ops, perOp)
			if perOp > 100 {
				t.Errorf("completions retain memory: %.2f bytes per op", perOp)
			}
		})
	}
}
