package transducer

import (
	"context"

	"github.com/kbukum/foldkit/fold"
	"github.com/kbukum/foldkit/future"
)

// Catcher computes a replacement item for a failed step.
type Catcher func(ctx context.Context, err error, item any) (any, error)

// Map passes m(item) to the next reducer.
func Map(m fold.Mapper) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		return func(ctx context.Context, acc, item any) (any, error) {
			out, err := m(ctx, item)
			if err != nil {
				return nil, err
			}
			return then(ctx, out, func(ctx context.Context, v any) (any, error) {
				return r(ctx, acc, v)
			})
		}
	}
}

// Filter passes item to the next reducer only when p(item) is truthy;
// otherwise the accumulator is returned unchanged. An error from p ends the
// fold.
func Filter(p fold.Predicate) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		return func(ctx context.Context, acc, item any) (any, error) {
			ok, err := p(ctx, item)
			if err != nil {
				return nil, err
			}
			return then(ctx, ok, func(ctx context.Context, ok any) (any, error) {
				if fold.Truthy(ok) {
					return r(ctx, acc, item)
				}
				return acc, nil
			})
		}
	}
}

// FlatMap folds every element of m(item) into the accumulator with the next
// reducer. The monad may be any value fold.GenericReduce accepts.
func FlatMap(m fold.Mapper) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		return func(ctx context.Context, acc, item any) (any, error) {
			monad, err := m(ctx, item)
			if err != nil {
				return nil, err
			}
			return then(ctx, monad, func(ctx context.Context, monad any) (any, error) {
				return fold.GenericReduce(ctx, monad, r, acc)
			})
		}
	}
}

// ForEach calls fn with every item before passing the item on unchanged.
// A pending result of fn is awaited first; its value is discarded.
func ForEach(fn fold.Mapper) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		return func(ctx context.Context, acc, item any) (any, error) {
			out, err := fn(ctx, item)
			if err != nil {
				return nil, err
			}
			return then(ctx, out, func(ctx context.Context, _ any) (any, error) {
				return r(ctx, acc, item)
			})
		}
	}
}

// Passthrough returns the reducer unchanged.
func Passthrough(r fold.Reducer) fold.Reducer { return r }

// TryCatch runs t and, when a step fails or its pending result rejects,
// folds catcher(err, item) into the accumulator with the base reducer
// instead. An error from catcher ends the fold.
func TryCatch(t fold.Transducer, catcher Catcher) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		inner := t(r)
		caught := func(ctx context.Context, acc, item any, cause error) (any, error) {
			v, err := catcher(ctx, cause, item)
			if err != nil {
				return nil, err
			}
			return then(ctx, v, func(ctx context.Context, v any) (any, error) {
				return r(ctx, acc, v)
			})
		}
		return func(ctx context.Context, acc, item any) (any, error) {
			out, err := inner(ctx, acc, item)
			if err != nil {
				return caught(ctx, acc, item, err)
			}
			f, ok := out.(*future.Future)
			if !ok {
				return out, nil
			}
			return future.Go(ctx, func(ctx context.Context) (any, error) {
				v, err := f.Await(ctx)
				if err == nil {
					return v, nil
				}
				next, err := caught(ctx, acc, item, err)
				return future.Resolve(ctx, next, err)
			}), nil
		}
	}
}

// Compose chains transducers like function composition:
// Compose(a, b)(r) == a(b(r)). Items reach a first, then b.
func Compose(ts ...fold.Transducer) fold.Transducer {
	return func(r fold.Reducer) fold.Reducer {
		for i := len(ts) - 1; i >= 0; i-- {
			r = ts[i](r)
		}
		return r
	}
}

// then calls fn with v, once v has settled if it is pending.
func then(ctx context.Context, v any, fn func(context.Context, any) (any, error)) (any, error) {
	if f, ok := v.(*future.Future); ok {
		return f.Then(ctx, fn), nil
	}
	return fn(ctx, v)
}
