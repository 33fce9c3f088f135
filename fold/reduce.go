package fold

import (
	"context"

	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/observability"
	"github.com/kbukum/foldkit/pipeline"
)

// GenericReduce folds coll with r. With an init value the fold starts from
// it; without one the first element seeds the accumulator and an empty
// collection yields nil.
//
// The result is a plain value while every reducer call returns one. The first
// time r returns a *future.Future, the rest of the walk continues in the
// background from the same position and GenericReduce returns a future for
// the final accumulator. Asynchronous sources and Deferred collections always
// produce a future.
func GenericReduce(ctx context.Context, coll any, r Reducer, init ...any) (any, error) {
	k := Classify(coll)
	switch k {
	case KindNil, KindValue:
		return reduceValue(ctx, coll, r, init)
	case KindSequence, KindRecord, KindSet, KindKeyedMap, KindText, KindBinary, KindPullSource:
		return reduceCursor(ctx, k, cursorOf(coll, k), r, init)
	case KindAsyncPullSource:
		return reduceAsyncSource(ctx, asyncSource(coll), r, init), nil
	case KindDeferred:
		return coll.(*future.Future).Then(ctx, func(ctx context.Context, v any) (any, error) {
			return GenericReduce(ctx, v, r, init...)
		}), nil
	case KindChainable:
		return reduceChain(ctx, coll.(Chainable), r, init)
	case KindFoldable:
		return coll.(Foldable).Reduce(ctx, r, init...)
	}
	return reduceValue(ctx, coll, r, init)
}

// reduceValue folds a single value. Unseeded, the value itself is returned.
func reduceValue(ctx context.Context, v any, r Reducer, init []any) (any, error) {
	if len(init) == 0 {
		return v, nil
	}
	if f, ok := init[0].(*future.Future); ok {
		return f.Then(ctx, func(ctx context.Context, acc any) (any, error) {
			return r(ctx, acc, v)
		}), nil
	}
	return r(ctx, init[0], v)
}

func reduceCursor(ctx context.Context, k Kind, c cursor, r Reducer, init []any) (any, error) {
	var acc any
	if len(init) > 0 {
		acc = init[0]
	} else {
		first, ok, err := c.next()
		if err != nil || !ok {
			c.stop()
			return nil, err
		}
		acc = first
	}
	if f, ok := acc.(*future.Future); ok {
		return handoff(ctx, k, c, r, f), nil
	}
	for {
		v, ok, err := c.next()
		if err != nil {
			c.stop()
			return nil, err
		}
		if !ok {
			c.stop()
			return acc, nil
		}
		next, err := r(ctx, acc, v)
		if err != nil {
			c.stop()
			return nil, err
		}
		if f, ok := next.(*future.Future); ok {
			return handoff(ctx, k, c, r, f), nil
		}
		acc = next
	}
}

// handoff continues a walk in the background once the accumulator is
// pending. Every remaining reducer call is awaited before the next element
// is taken from c.
func handoff(ctx context.Context, k Kind, c cursor, r Reducer, pending *future.Future) *future.Future {
	observability.Engine().RecordHandoff(ctx, k.String())
	return future.Go(ctx, func(ctx context.Context) (any, error) {
		defer c.stop()
		acc, err := pending.Await(ctx)
		if err != nil {
			return nil, err
		}
		for {
			v, ok, err := c.next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return acc, nil
			}
			next, err := r(ctx, acc, v)
			if acc, err = future.Resolve(ctx, next, err); err != nil {
				return nil, err
			}
		}
	})
}

// reduceAsyncSource folds an asynchronous source, one pull at a time.
// The source is closed when the fold ends.
func reduceAsyncSource(ctx context.Context, src pipeline.Iterator[any], r Reducer, init []any) *future.Future {
	observability.Engine().RecordHandoff(ctx, KindAsyncPullSource.String())
	return future.Go(ctx, func(ctx context.Context) (any, error) {
		var acc any
		seeded := len(init) > 0
		if seeded {
			var err error
			if acc, err = future.Resolve(ctx, init[0], nil); err != nil {
				src.Close()
				return nil, err
			}
		}
		err := pipeline.ForEach(ctx, pipeline.From(src), func(ctx context.Context, v any) error {
			if !seeded {
				acc, seeded = v, true
				return nil
			}
			next, err := r(ctx, acc, v)
			acc, err = future.Resolve(ctx, next, err)
			return err
		})
		if err != nil {
			return nil, err
		}
		return acc, nil
	})
}

// reduceChain folds a Chainable by flat-mapping it with a callback that
// threads the accumulator.
func reduceChain(ctx context.Context, c Chainable, r Reducer, init []any) (any, error) {
	var acc any
	seeded := len(init) > 0
	if seeded {
		var err error
		if acc, err = future.Resolve(ctx, init[0], nil); err != nil {
			return nil, err
		}
	}
	out, err := c.FlatMap(ctx, func(ctx context.Context, v any) (any, error) {
		if !seeded {
			acc, seeded = v, true
			return nil, nil
		}
		next, err := r(ctx, acc, v)
		if acc, err = future.Resolve(ctx, next, err); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if f, ok := out.(*future.Future); ok {
		return f.Then(ctx, func(context.Context, any) (any, error) { return acc, nil }), nil
	}
	return acc, nil
}
