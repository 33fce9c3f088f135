// Package future provides the pending-value type threaded through every
// foldkit operation.
//
// A callback may return either a plain value or a *Future. The engine checks
// with IsPending exactly once per result and commits to the synchronous path
// until the first pending value appears.
//
//	f := future.Go(ctx, func(ctx context.Context) (any, error) {
//	    return fetch(ctx, id)
//	})
//	v, err := f.Await(ctx)
//
// Resolve is the uniform "await if pending" helper used by callers that do
// not care which path produced a value:
//
//	out, err := mapper(ctx, x)
//	v, err := future.Resolve(ctx, out, err)
package future
