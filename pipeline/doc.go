// Package pipeline provides the pull-based Iterator that foldkit treats as an
// asynchronous pull source, plus the lazy operators built on it.
//
// Pipelines are lazy: no work happens until values are pulled via Iter,
// Drain, or ForEach. Each stage pulls from the previous stage on demand,
// providing natural backpressure without explicit flow control.
//
// # Sources
//
//   - FromSlice: a fixed slice
//   - FromChannel: a receive channel, exhausted when the channel closes
//   - From: any Iterator
//
// # Operators
//
// Synchronous (single-goroutine):
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value
//
// Concurrent (multi-goroutine):
//
//   - Parallel: concurrent Map with a worker pool (order NOT preserved)
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := pipeline.Map(src, func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	evens := pipeline.Filter(doubled, func(_ context.Context, n int) (bool, error) {
//	    return n%4 == 0, nil
//	})
//	err := pipeline.ForEach(ctx, evens, func(_ context.Context, n int) error {
//	    fmt.Println(n)
//	    return nil
//	})
package pipeline
