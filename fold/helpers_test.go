package fold

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/pipeline"
)

func sum(_ context.Context, acc, v any) (any, error) {
	return acc.(int) + v.(int), nil
}

func concat(_ context.Context, acc, v any) (any, error) {
	return acc.(string) + v.(string), nil
}

func later(ctx context.Context, v any) *future.Future {
	return future.Go(ctx, func(context.Context) (any, error) {
		time.Sleep(time.Millisecond)
		return v, nil
	})
}

func double(_ context.Context, v any) (any, error) {
	return v.(int) * 2, nil
}

func asyncDouble(ctx context.Context, v any) (any, error) {
	return later(ctx, v.(int)*2), nil
}

func isOdd(_ context.Context, v any) (any, error) {
	return v.(int)%2 == 1, nil
}

// await resolves v if it is a future and fails the test on error.
func await(t *testing.T, v any, err error) any {
	t.Helper()
	out, err := future.Resolve(context.Background(), v, err)
	require.NoError(t, err)
	return out
}

func seqOf(vs ...any) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range vs {
			if !yield(v) {
				return
			}
		}
	}
}

func collectSeq(t *testing.T, seq iter.Seq2[any, error]) []any {
	t.Helper()
	out := []any{}
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func collectIter(t *testing.T, it pipeline.Iterator[any]) []any {
	t.Helper()
	defer it.Close()
	out := []any{}
	for {
		v, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func sourceOf(vs ...any) pipeline.Iterator[any] {
	return pipeline.FromSlice(vs).Iter(context.Background())
}

// bag folds itself by walking its items.
type bag struct{ items []any }

func (b bag) Reduce(ctx context.Context, r Reducer, init ...any) (any, error) {
	return GenericReduce(ctx, b.items, r, init...)
}

// chain flat-maps itself; mapper results are expected to be []any.
type chain struct{ items []any }

func (c chain) FlatMap(ctx context.Context, m Mapper) (any, error) {
	out := []any{}
	for _, v := range c.items {
		r, err := m(ctx, v)
		if r, err = future.Resolve(ctx, r, err); err != nil {
			return nil, err
		}
		items, _ := r.([]any)
		out = append(out, items...)
	}
	return chain{items: out}, nil
}

// closeTracker records whether Close was called on the wrapped iterator.
type closeTracker struct {
	pipeline.Iterator[any]
	mu     sync.Mutex
	closed bool
}

func (c *closeTracker) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.Iterator.Close()
}

func (c *closeTracker) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
