package fp

import (
	"context"

	"github.com/kbukum/foldkit/fold"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/pool"
	"github.com/kbukum/foldkit/transducer"
	"github.com/kbukum/foldkit/validation"
)

// Func is a collection operation with its callbacks already bound.
type Func func(ctx context.Context, coll any) (any, error)

// PoolFunc is a pooled map with its limit already bound.
type PoolFunc func(ctx context.Context, coll any, m fold.Mapper) (any, error)

// Reduce folds coll with r. init may be a fold.Resolver or a function literal
// of the same signature, in which case the initial value is computed from the
// collection. Without init the first
// element seeds the fold.
func Reduce(ctx context.Context, coll any, r fold.Reducer, init ...any) (any, error) {
	if err := validation.Required("reducer", r); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	if len(init) > 0 {
		if resolve, ok := fold.AsResolver(init[0]); ok {
			seed, err := resolve(ctx, coll)
			if seed, err = future.Resolve(ctx, seed, err); err != nil {
				return nil, err
			}
			init = []any{seed}
		}
	}
	out, err := fold.GenericReduce(ctx, coll, r, init...)
	return future.Resolve(ctx, out, err)
}

// ReduceWith binds r and init for a later Reduce.
func ReduceWith(r fold.Reducer, init ...any) Func {
	return func(ctx context.Context, coll any) (any, error) {
		return Reduce(ctx, coll, r, init...)
	}
}

// Transform folds coll through t into into. into may be a fold.Resolver or a
// function literal of the same signature.
func Transform(ctx context.Context, coll any, t fold.Transducer, into any) (any, error) {
	if err := validation.Required("transducer", t); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	out, err := fold.GenericTransform(ctx, coll, t, into)
	return future.Resolve(ctx, out, err)
}

// TransformWith binds t and into for a later Transform.
func TransformWith(t fold.Transducer, into any) Func {
	return func(ctx context.Context, coll any) (any, error) {
		return Transform(ctx, coll, t, into)
	}
}

// Map applies m to every element of coll. Pending mapper results run
// concurrently and are resolved before Map returns.
func Map(ctx context.Context, coll any, m fold.Mapper) (any, error) {
	if err := validation.Required("mapper", m); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	out, err := fold.GenericMap(ctx, coll, m)
	return future.Resolve(ctx, out, err)
}

// MapWith binds m for a later Map.
func MapWith(m fold.Mapper) Func {
	return func(ctx context.Context, coll any) (any, error) {
		return Map(ctx, coll, m)
	}
}

// MapSeries applies m to every element of coll, waiting for each pending
// result before calling m again.
func MapSeries(ctx context.Context, coll any, m fold.Mapper) (any, error) {
	if err := validation.Required("mapper", m); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	out, err := fold.MapSeries(ctx, coll, m)
	return future.Resolve(ctx, out, err)
}

// MapPool returns a map that keeps at most limit mapper calls outstanding.
// A zero limit uses the configured pool default.
func MapPool(limit int) PoolFunc {
	return func(ctx context.Context, coll any, m fold.Mapper) (any, error) {
		return pool.Map(ctx, coll, limit, m)
	}
}

// Filter keeps the elements of coll for which p is truthy.
func Filter(ctx context.Context, coll any, p fold.Predicate) (any, error) {
	if err := validation.Required("predicate", p); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	out, err := fold.GenericFilter(ctx, coll, p)
	return future.Resolve(ctx, out, err)
}

// FilterWith binds p for a later Filter.
func FilterWith(p fold.Predicate) Func {
	return func(ctx context.Context, coll any) (any, error) {
		return Filter(ctx, coll, p)
	}
}

// FlatMap maps every element of coll to a container and concatenates the
// results.
func FlatMap(ctx context.Context, coll any, m fold.Mapper) (any, error) {
	if err := validation.Required("mapper", m); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	out, err := fold.GenericFlatMap(ctx, coll, m)
	return future.Resolve(ctx, out, err)
}

// FlatMapWith binds m for a later FlatMap.
func FlatMapWith(m fold.Mapper) Func {
	return func(ctx context.Context, coll any) (any, error) {
		return FlatMap(ctx, coll, m)
	}
}

// ForEach calls fn with every element of coll in order, waiting for a
// pending result before moving on, and returns coll.
func ForEach(ctx context.Context, coll any, fn fold.Mapper) (any, error) {
	if err := validation.Required("fn", fn); err != nil {
		return nil, err
	}
	coll, err := settle(ctx, coll)
	if err != nil {
		return nil, err
	}
	visit := transducer.ForEach(fn)(func(_ context.Context, acc, _ any) (any, error) {
		return acc, nil
	})
	out, err := fold.GenericReduce(ctx, coll, visit, nil)
	if _, err := future.Resolve(ctx, out, err); err != nil {
		return nil, err
	}
	return coll, nil
}

// settle awaits a future in the collection position. Only one level is
// awaited.
func settle(ctx context.Context, coll any) (any, error) {
	if f, ok := coll.(*future.Future); ok {
		return f.Await(ctx)
	}
	return coll, nil
}
