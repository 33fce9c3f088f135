package fold

import (
	"context"
	"iter"

	"github.com/kbukum/foldkit/collection"
	"github.com/kbukum/foldkit/errors"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/pipeline"
)

// GenericMap applies m to every element of coll and returns a container of
// the same kind. Eager containers call m for every element without waiting;
// if any result is pending, the container is returned as a future that
// settles once every element has resolved. Pull sources are mapped lazily.
func GenericMap(ctx context.Context, coll any, m Mapper) (any, error) {
	switch k := Classify(coll); k {
	case KindNil:
		return nil, nil
	case KindSequence, KindRecord, KindSet, KindKeyedMap, KindText, KindBinary:
		items, build, err := Spread(coll)
		if err != nil {
			return nil, err
		}
		return mapEager(ctx, items, m, build)
	case KindPullSource:
		return mapSeq(ctx, pullSeq(coll), m), nil
	case KindAsyncPullSource:
		return mapAsyncSource(ctx, asyncSource(coll), m), nil
	case KindDeferred:
		return coll.(*future.Future).Then(ctx, func(ctx context.Context, v any) (any, error) {
			return GenericMap(ctx, v, m)
		}), nil
	case KindChainable:
		return coll.(Chainable).FlatMap(ctx, func(ctx context.Context, v any) (any, error) {
			out, err := m(ctx, v)
			if err != nil {
				return nil, err
			}
			if f, ok := out.(*future.Future); ok {
				return f.Then(ctx, func(_ context.Context, v any) (any, error) { return []any{v}, nil }), nil
			}
			return []any{out}, nil
		})
	case KindFoldable:
		return GenericReduce(ctx, coll, func(ctx context.Context, acc, v any) (any, error) {
			out, err := m(ctx, v)
			if err != nil {
				return nil, err
			}
			return appendResolved(ctx, acc.([]any), out), nil
		}, []any{})
	}
	return m(ctx, coll)
}

// MapSeries is GenericMap for eager containers with m called strictly one
// element at a time; each result is awaited before the next call.
func MapSeries(ctx context.Context, coll any, m Mapper) (any, error) {
	switch Classify(coll) {
	case KindSequence, KindRecord, KindSet, KindKeyedMap, KindText, KindBinary:
	case KindDeferred:
		return coll.(*future.Future).Then(ctx, func(ctx context.Context, v any) (any, error) {
			return MapSeries(ctx, v, m)
		}), nil
	default:
		return GenericMap(ctx, coll, m)
	}
	items, build, err := Spread(coll)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, v := range items {
		r, err := m(ctx, v)
		if f, ok := r.(*future.Future); ok && err == nil {
			return future.Go(ctx, func(ctx context.Context) (any, error) {
				if out[i], err = f.Await(ctx); err != nil {
					return nil, err
				}
				for j := i + 1; j < len(items); j++ {
					r, err := m(ctx, items[j])
					if out[j], err = future.Resolve(ctx, r, err); err != nil {
						return nil, err
					}
				}
				return build(out)
			}), nil
		}
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return build(out)
}

// Spread returns the elements of an eager container together with a
// function that rebuilds a container of the same kind from replacement
// elements. Other kinds are rejected with a shape error.
func Spread(coll any) ([]any, func([]any) (any, error), error) {
	switch k := Classify(coll); k {
	case KindSequence:
		return sequenceItems(coll), toSlice, nil
	case KindRecord:
		keys, vals := recordEntries(coll)
		return vals, toRecord(keys), nil
	case KindSet:
		return coll.(*collection.Set).Values(), toSet, nil
	case KindKeyedMap:
		keys, vals := keyedEntries(coll)
		return vals, toKeyed(keys), nil
	case KindText, KindBinary:
		items, err := drain(cursorOf(coll, k))
		if err != nil {
			return nil, nil, err
		}
		return items, reifyAs(coll), nil
	}
	return nil, nil, errors.ShapeMismatch("spread", coll)
}

// GenericFilter keeps the elements of coll for which p is truthy and returns
// a container of the same kind. Pending predicate results are handled as in
// GenericMap.
func GenericFilter(ctx context.Context, coll any, p Predicate) (any, error) {
	switch k := Classify(coll); k {
	case KindNil:
		return nil, nil
	case KindSequence:
		return filterEager(ctx, sequenceItems(coll), p, toSlice)
	case KindRecord:
		keys, vals := recordEntries(coll)
		return filterEager(ctx, vals, p, keepRecord(keys))
	case KindSet:
		return filterEager(ctx, coll.(*collection.Set).Values(), p, toSet)
	case KindKeyedMap:
		keys, vals := keyedEntries(coll)
		return filterEager(ctx, vals, p, keepKeyed(keys))
	case KindText, KindBinary:
		items, err := drain(cursorOf(coll, k))
		if err != nil {
			return nil, err
		}
		return filterEager(ctx, items, p, reifyAs(coll))
	case KindPullSource:
		return filterSeq(ctx, pullSeq(coll), p), nil
	case KindAsyncPullSource:
		return pipeline.Filter(pipeline.From(asyncSource(coll)), func(ctx context.Context, v any) (bool, error) {
			ok, err := p(ctx, v)
			ok, err = future.Resolve(ctx, ok, err)
			return Truthy(ok), err
		}).Iter(ctx), nil
	case KindDeferred:
		return coll.(*future.Future).Then(ctx, func(ctx context.Context, v any) (any, error) {
			return GenericFilter(ctx, v, p)
		}), nil
	case KindChainable:
		return coll.(Chainable).FlatMap(ctx, func(ctx context.Context, v any) (any, error) {
			ok, err := p(ctx, v)
			if ok, err = future.Resolve(ctx, ok, err); err != nil {
				return nil, err
			}
			if Truthy(ok) {
				return []any{v}, nil
			}
			return []any{}, nil
		})
	case KindFoldable:
		return GenericReduce(ctx, coll, func(ctx context.Context, acc, v any) (any, error) {
			ok, err := p(ctx, v)
			if ok, err = future.Resolve(ctx, ok, err); err != nil {
				return nil, err
			}
			if Truthy(ok) {
				return append(acc.([]any), v), nil
			}
			return acc, nil
		}, []any{})
	}
	ok, err := p(ctx, coll)
	if ok, err = future.Resolve(ctx, ok, err); err != nil {
		return nil, err
	}
	if Truthy(ok) {
		return coll, nil
	}
	return nil, nil
}

// GenericFlatMap applies m to every element of coll and folds each result
// into a container of the same kind. Records and keyed maps cannot be
// flattened.
func GenericFlatMap(ctx context.Context, coll any, m Mapper) (any, error) {
	switch k := Classify(coll); k {
	case KindNil:
		return nil, nil
	case KindSequence:
		return flatMapEager(ctx, sequenceItems(coll), m, []any{})
	case KindSet:
		return flatMapEager(ctx, coll.(*collection.Set).Values(), m, collection.NewSet())
	case KindText:
		items, _ := drain(cursorOf(coll, k))
		return flatMapEager(ctx, items, m, "")
	case KindBinary:
		items, _ := drain(cursorOf(coll, k))
		return flatMapEager(ctx, items, m, []byte{})
	case KindPullSource:
		return FlatMappingIterator(ctx, pullSeq(coll), m), nil
	case KindAsyncPullSource:
		return NewFlatMappingAsyncIterator(ctx, asyncSource(coll), m), nil
	case KindDeferred:
		return coll.(*future.Future).Then(ctx, func(ctx context.Context, v any) (any, error) {
			return GenericFlatMap(ctx, v, m)
		}), nil
	case KindChainable:
		return coll.(Chainable).FlatMap(ctx, m)
	case KindFoldable:
		return GenericReduce(ctx, coll, flattening(m, AppendReducer([]any{})), []any{})
	case KindRecord, KindKeyedMap:
		return nil, errors.ShapeMismatch("flatMap", coll)
	}
	return m(ctx, coll)
}

// flattening returns a reducer that maps each value with m and folds the
// resulting monad into the accumulator with r.
func flattening(m Mapper, r Reducer) Reducer {
	return func(ctx context.Context, acc, v any) (any, error) {
		monad, err := m(ctx, v)
		if err != nil {
			return nil, err
		}
		if f, ok := monad.(*future.Future); ok {
			return f.Then(ctx, func(ctx context.Context, monad any) (any, error) {
				return GenericReduce(ctx, monad, r, acc)
			}), nil
		}
		return GenericReduce(ctx, monad, r, acc)
	}
}

func flatMapEager(ctx context.Context, items []any, m Mapper, into any) (any, error) {
	monads, err := mapEager(ctx, items, m, toSlice)
	if err != nil {
		return nil, err
	}
	r := AppendReducer(into)
	flatten := func(ctx context.Context, monads any) (any, error) {
		return GenericReduce(ctx, monads, func(ctx context.Context, acc, monad any) (any, error) {
			return GenericReduce(ctx, monad, r, acc)
		}, into)
	}
	if f, ok := monads.(*future.Future); ok {
		return f.Then(ctx, flatten), nil
	}
	return flatten(ctx, monads)
}

// mapEager calls m for every item, then builds the result with build once
// every pending result has resolved.
func mapEager(ctx context.Context, items []any, m Mapper, build func([]any) (any, error)) (any, error) {
	out := make([]any, len(items))
	pending := false
	for i, v := range items {
		r, err := m(ctx, v)
		if err != nil {
			return nil, err
		}
		out[i] = r
		pending = pending || future.IsPending(r)
	}
	if !pending {
		return build(out)
	}
	return future.Go(ctx, func(ctx context.Context) (any, error) {
		if _, err := future.All(ctx, out); err != nil {
			return nil, err
		}
		return build(out)
	}), nil
}

func filterEager(ctx context.Context, items []any, p Predicate, build func([]any) (any, error)) (any, error) {
	keep := func(oks []any) (any, error) {
		kept := make([]any, len(items))
		for i, ok := range oks {
			if Truthy(ok) {
				kept[i] = items[i]
			} else {
				kept[i] = dropped{}
			}
		}
		return build(kept)
	}
	oks, err := mapEager(ctx, items, Mapper(p), func(oks []any) (any, error) { return oks, nil })
	if err != nil {
		return nil, err
	}
	if f, ok := oks.(*future.Future); ok {
		return f.Then(ctx, func(_ context.Context, oks any) (any, error) { return keep(oks.([]any)) }), nil
	}
	return keep(oks.([]any))
}

// dropped marks an element removed by a filter.
type dropped struct{}

func toSlice(vs []any) (any, error) {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		if _, ok := v.(dropped); !ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func toRecord(keys []string) func([]any) (any, error) {
	return func(vs []any) (any, error) {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[k] = vs[i]
		}
		return out, nil
	}
}

func keepRecord(keys []string) func([]any) (any, error) {
	return func(vs []any) (any, error) {
		out := make(map[string]any)
		for i, k := range keys {
			if _, ok := vs[i].(dropped); !ok {
				out[k] = vs[i]
			}
		}
		return out, nil
	}
}

func toSet(vs []any) (any, error) {
	s := collection.NewSet()
	for _, v := range vs {
		if _, ok := v.(dropped); ok {
			continue
		}
		if _, err := appendSet(context.Background(), s, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func toKeyed(keys []any) func([]any) (any, error) {
	return func(vs []any) (any, error) {
		out := collection.NewOrderedMap()
		for i, k := range keys {
			out.Set(k, vs[i])
		}
		return out, nil
	}
}

func keepKeyed(keys []any) func([]any) (any, error) {
	return func(vs []any) (any, error) {
		out := collection.NewOrderedMap()
		for i, k := range keys {
			if _, ok := vs[i].(dropped); !ok {
				out.Set(k, vs[i])
			}
		}
		return out, nil
	}
}

// reifyAs rebuilds a text or binary container from its elements.
func reifyAs(coll any) func([]any) (any, error) {
	return func(vs []any) (any, error) {
		var acc any = ""
		if _, ok := coll.([]byte); ok {
			acc = []byte{}
		}
		r := AppendReducer(acc)
		for _, v := range vs {
			if _, ok := v.(dropped); ok {
				continue
			}
			var err error
			if acc, err = r(context.Background(), acc, v); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

func drain(c cursor) ([]any, error) {
	defer c.stop()
	var out []any
	for {
		v, ok, err := c.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

func appendResolved(ctx context.Context, acc []any, v any) any {
	if f, ok := v.(*future.Future); ok {
		return f.Then(ctx, func(_ context.Context, v any) (any, error) { return append(acc, v), nil })
	}
	return append(acc, v)
}

// mapSeq maps a pull source lazily. Pending results are awaited before they
// are yielded; the first error ends the sequence.
func mapSeq(ctx context.Context, seq iter.Seq2[any, error], m Mapper) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range seq {
			if err == nil {
				var out any
				out, err = m(ctx, v)
				v, err = future.Resolve(ctx, out, err)
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func filterSeq(ctx context.Context, seq iter.Seq2[any, error], p Predicate) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range seq {
			var ok any
			if err == nil {
				ok, err = p(ctx, v)
				ok, err = future.Resolve(ctx, ok, err)
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if Truthy(ok) && !yield(v, nil) {
				return
			}
		}
	}
}

func mapAsyncSource(ctx context.Context, src pipeline.Iterator[any], m Mapper) pipeline.Iterator[any] {
	return pipeline.Map(pipeline.From(src), func(ctx context.Context, v any) (any, error) {
		out, err := m(ctx, v)
		return future.Resolve(ctx, out, err)
	}).Iter(ctx)
}
