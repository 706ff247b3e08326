package indexer

import "sync"

// runParallel runs fn over every item in items using at most workers
// goroutines, blocking until all have completed. workers <= 1 runs
// sequentially on the calling goroutine, which keeps a single-file
// BuildFiles call allocation-free.
func runParallel[T any](workers int, items []T, fn func(T)) {
	runParallelIndexed(workers, items, func(_ int, item T) { fn(item) })
}

// runParallelIndexed is runParallel, passing each item's index to fn as
// well — used where the caller writes results into a preallocated slice
// at the matching index instead of collecting them through a channel.
func runParallelIndexed[T any](workers int, items []T, fn func(int, T)) {
	if len(items) == 0 {
		return
	}
	if workers <= 1 {
		for i, item := range items {
			fn(i, item)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i, items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// atomicAdd adds delta to *dst under a package-level mutex. The indexer's
// per-pass counters are updated at most a few thousand times per build, so
// a mutex is simpler than sync/atomic's int64 primitives and just as
// correct here.
var counterMu sync.Mutex

func atomicAdd(dst *int64, delta int64) {
	counterMu.Lock()
	*dst += delta
	counterMu.Unlock()
}
