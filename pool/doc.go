// Package pool maps containers with a bounded number of outstanding mapper
// calls.
//
// Admission is controlled by a weighted semaphore: a slot is acquired before
// each mapper call and released when its result settles. A mapper returning a
// plain value releases its slot at once. Results keep the positions or keys
// of their inputs.
//
//	out, err := pool.Map(ctx, []any{1, 2, 3, 4, 5}, 2, fetch)
//
// Stream applies the same bound to an asynchronous source and yields results
// in completion order.
package pool
