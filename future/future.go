package future

import (
	"context"
	"sync"
)

// Future is a value that settles at most once, either resolved with a value
// or rejected with an error.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// New returns a pending future together with its resolve and reject
// functions. Only the first call to either has any effect.
func New() (*Future, func(any), func(error)) {
	f := newFuture()
	return f, f.resolve, f.reject
}

// Go runs fn on a new goroutine and returns a future for its outcome.
// A panic inside fn rejects the future with a *PanicError.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := newFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.reject(newPanicError(r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			f.reject(err)
			return
		}
		f.resolve(v)
	}()
	return f
}

// Resolved returns an already settled future holding v.
func Resolved(v any) *Future {
	f := newFuture()
	f.resolve(v)
	return f
}

// Rejected returns an already settled future holding err.
func Rejected(err error) *Future {
	f := newFuture()
	f.reject(err)
	return f
}

func (f *Future) resolve(v any) {
	f.once.Do(func() {
		f.val = v
		close(f.done)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has resolved or rejected.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done. A future resolved
// with another future is followed until a plain value or an error is reached.
func (f *Future) Await(ctx context.Context) (any, error) {
	cur := f
	for {
		select {
		case <-cur.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if cur.err != nil {
			return nil, cur.err
		}
		next, ok := cur.val.(*Future)
		if !ok {
			return cur.val, nil
		}
		cur = next
	}
}

// Then returns a future that runs fn with the resolved value of f.
// A rejection of f is passed through without calling fn.
func (f *Future) Then(ctx context.Context, fn func(ctx context.Context, v any) (any, error)) *Future {
	return Go(ctx, func(ctx context.Context) (any, error) {
		v, err := f.Await(ctx)
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, v)
		return Resolve(ctx, out, err)
	})
}
