package future

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// IsPending reports whether v is a *Future.
func IsPending(v any) bool {
	_, ok := v.(*Future)
	return ok
}

// AnyPending reports whether any of vs is a *Future.
func AnyPending(vs ...any) bool {
	for _, v := range vs {
		if IsPending(v) {
			return true
		}
	}
	return false
}

// Resolve returns (v, err) unchanged when err is set or v is a plain value,
// and awaits v when it is a *Future.
func Resolve(ctx context.Context, v any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if f, ok := v.(*Future); ok {
		return f.Await(ctx)
	}
	return v, nil
}

// All replaces every pending element of vs with its resolved value, in
// place. It returns as soon as any element rejects, without waiting for the
// rest; the remaining waits are canceled.
func All(ctx context.Context, vs []any) ([]any, error) {
	if !AnyPending(vs...) {
		return vs, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range vs {
		f, ok := v.(*Future)
		if !ok {
			continue
		}
		g.Go(func() error {
			r, err := f.Await(gctx)
			if err != nil {
				return err
			}
			vs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vs, nil
}
