package fold

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/foldkit/collection"
	"github.com/kbukum/foldkit/future"
)

func TestGenericReduce_Sum(t *testing.T) {
	ctx := context.Background()

	got, err := GenericReduce(ctx, []any{1, 2, 3, 4, 5}, sum)
	require.NoError(t, err)
	assert.Equal(t, 15, got)

	got, err = GenericReduce(ctx, map[string]any{"a": 1, "b": 2, "c": 3}, sum)
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestGenericReduce_EmptyReturnsSeed(t *testing.T) {
	ctx := context.Background()
	never := func(context.Context, any, any) (any, error) {
		t.Fatal("reducer must not be called")
		return nil, nil
	}
	seed := &struct{ name string }{"seed"}

	for name, coll := range map[string]any{
		"sequence":     []any{},
		"typed slice":  []int{},
		"record":       map[string]any{},
		"set":          collection.NewSet(),
		"ordered map":  collection.NewOrderedMap(),
		"keyed map":    map[int]any{},
		"text":         "",
		"binary":       []byte{},
		"pull source":  seqOf(),
		"async source": sourceOf(),
		"deferred":     future.Resolved([]any{}),
		"foldable":     bag{},
		"chainable":    chain{},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := GenericReduce(ctx, coll, never, seed)
			assert.Same(t, seed, await(t, got, err))
		})
	}
}

func TestGenericReduce_SingleElementUnseeded(t *testing.T) {
	ctx := context.Background()
	never := func(context.Context, any, any) (any, error) {
		t.Fatal("reducer must not be called")
		return nil, nil
	}

	tests := []struct {
		name string
		coll any
		want any
	}{
		{"sequence", []any{7}, 7},
		{"typed slice", []string{"x"}, "x"},
		{"record", map[string]any{"a": 7}, 7},
		{"set", collection.NewSet(7), 7},
		{"ordered map", collection.NewOrderedMap(collection.Pair{Key: "k", Value: 7}), 7},
		{"text", "é", "é"},
		{"binary", []byte{7}, byte(7)},
		{"pull source", seqOf(7), 7},
		{"async source", sourceOf(7), 7},
		{"foldable", bag{items: []any{7}}, 7},
		{"chainable", chain{items: []any{7}}, 7},
		{"value", 7, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GenericReduce(ctx, tc.coll, never)
			assert.Equal(t, tc.want, await(t, got, err))
		})
	}
}

func TestGenericReduce_EmptyUnseededIsNil(t *testing.T) {
	got, err := GenericReduce(context.Background(), []any{}, sum)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGenericReduce_NilFoldsAsOneValue(t *testing.T) {
	ctx := context.Background()
	got, err := GenericReduce(ctx, nil, appendSlice, []any{1})
	require.NoError(t, err)
	assert.Equal(t, []any{1, nil}, got)

	got, err = GenericReduce(ctx, nil, appendSlice)
	require.NoError(t, err)
	assert.Nil(t, got)

	var c *chain
	got, err = GenericReduce(ctx, c, appendSlice, []any{})
	require.NoError(t, err)
	assert.Equal(t, []any{c}, got)
}

func TestGenericReduce_SyncStaysSync(t *testing.T) {
	got, err := GenericReduce(context.Background(), []any{1, 2, 3}, sum, 0)
	require.NoError(t, err)
	assert.False(t, future.IsPending(got))
	assert.Equal(t, 6, got)
}

func TestGenericReduce_HandoffVisitsEachElementOnceInOrder(t *testing.T) {
	ctx := context.Background()
	var (
		mu   sync.Mutex
		seen []any
	)
	r := func(ctx context.Context, acc, v any) (any, error) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		next := acc.(int) + v.(int)
		if v.(int) >= 3 {
			return later(ctx, next), nil
		}
		return next, nil
	}

	for name, coll := range map[string]any{
		"sequence":    []any{1, 2, 3, 4, 5, 6},
		"typed slice": []int{1, 2, 3, 4, 5, 6},
		"pull source": seqOf(1, 2, 3, 4, 5, 6),
		"ordered map": collection.NewOrderedMap(
			collection.Pair{Key: "a", Value: 1}, collection.Pair{Key: "b", Value: 2},
			collection.Pair{Key: "c", Value: 3}, collection.Pair{Key: "d", Value: 4},
			collection.Pair{Key: "e", Value: 5}, collection.Pair{Key: "f", Value: 6},
		),
	} {
		t.Run(name, func(t *testing.T) {
			mu.Lock()
			seen = nil
			mu.Unlock()

			got, err := GenericReduce(ctx, coll, r, 0)
			require.NoError(t, err)
			require.True(t, future.IsPending(got), "expected a future once the reducer went async")
			assert.Equal(t, 21, await(t, got, nil))

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, []any{1, 2, 3, 4, 5, 6}, seen)
		})
	}
}

func TestGenericReduce_PendingSeed(t *testing.T) {
	got, err := GenericReduce(context.Background(), []any{1, 2}, sum, future.Resolved(10))
	require.True(t, future.IsPending(got))
	assert.Equal(t, 13, await(t, got, err))
}

func TestGenericReduce_PendingSeedOnValue(t *testing.T) {
	got, err := GenericReduce(context.Background(), 5, sum, future.Resolved(10))
	assert.Equal(t, 15, await(t, got, err))
}

func TestGenericReduce_ErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	t.Run("sync", func(t *testing.T) {
		var calls []any
		r := func(_ context.Context, acc, v any) (any, error) {
			calls = append(calls, v)
			if len(calls) == 3 {
				return nil, boom
			}
			return acc.(int) + v.(int), nil
		}
		_, err := GenericReduce(ctx, []any{1, 2, 3, 4, 5}, r, 0)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []any{1, 2, 3}, calls)
	})

	t.Run("after handoff", func(t *testing.T) {
		var (
			mu    sync.Mutex
			calls []any
		)
		r := func(ctx context.Context, acc, v any) (any, error) {
			mu.Lock()
			calls = append(calls, v)
			n := len(calls)
			mu.Unlock()
			if n == 3 {
				return nil, boom
			}
			return later(ctx, acc.(int)+v.(int)), nil
		}
		got, err := GenericReduce(ctx, []any{1, 2, 3, 4, 5}, r, 0)
		require.NoError(t, err)
		_, err = future.Resolve(ctx, got, nil)
		require.ErrorIs(t, err, boom)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []any{1, 2, 3}, calls)
	})

	t.Run("rejected step", func(t *testing.T) {
		r := func(ctx context.Context, acc, v any) (any, error) {
			if v.(int) == 2 {
				return future.Rejected(boom), nil
			}
			return acc.(int) + v.(int), nil
		}
		got, err := GenericReduce(ctx, []any{1, 2, 3}, r, 0)
		require.NoError(t, err)
		_, err = future.Resolve(ctx, got, nil)
		require.ErrorIs(t, err, boom)
	})
}

func TestGenericReduce_PullSourceError(t *testing.T) {
	boom := errors.New("source failed")
	seq := iter.Seq2[any, error](func(yield func(any, error) bool) {
		if !yield(1, nil) {
			return
		}
		yield(nil, boom)
	})
	_, err := GenericReduce(context.Background(), seq, sum, 0)
	require.ErrorIs(t, err, boom)
}

func TestGenericReduce_PullSourceStopsEarlyOnError(t *testing.T) {
	boom := errors.New("boom")
	pulled := 0
	seq := iter.Seq[any](func(yield func(any) bool) {
		for i := 1; i <= 10; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	})
	r := func(_ context.Context, acc, v any) (any, error) {
		if v.(int) == 2 {
			return nil, boom
		}
		return acc, nil
	}
	_, err := GenericReduce(context.Background(), seq, r, 0)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, pulled)
}

func TestGenericReduce_RecordWalksSortedKeys(t *testing.T) {
	got, err := GenericReduce(context.Background(), map[string]any{"b": "2", "c": "3", "a": "1"}, concat, "")
	require.NoError(t, err)
	assert.Equal(t, "123", got)
}

func TestGenericReduce_OrderedMapKeepsInsertionOrder(t *testing.T) {
	m := collection.NewOrderedMap(
		collection.Pair{Key: 2, Value: "b"},
		collection.Pair{Key: 1, Value: "a"},
	)
	got, err := GenericReduce(context.Background(), m, concat, "")
	require.NoError(t, err)
	assert.Equal(t, "ba", got)
}

func TestGenericReduce_Text(t *testing.T) {
	got, err := GenericReduce(context.Background(), "héllo", func(_ context.Context, acc, v any) (any, error) {
		return append(acc.([]any), v), nil
	}, []any{})
	require.NoError(t, err)
	assert.Equal(t, []any{"h", "é", "l", "l", "o"}, got)
}

func TestGenericReduce_AsyncSources(t *testing.T) {
	ctx := context.Background()

	t.Run("iterator", func(t *testing.T) {
		got, err := GenericReduce(ctx, sourceOf(1, 2, 3), sum, 0)
		require.True(t, future.IsPending(got))
		assert.Equal(t, 6, await(t, got, err))
	})

	t.Run("typed channel", func(t *testing.T) {
		ch := make(chan int, 3)
		ch <- 1
		ch <- 2
		ch <- 3
		close(ch)
		got, err := GenericReduce(ctx, ch, sum, 0)
		assert.Equal(t, 6, await(t, got, err))
	})

	t.Run("any channel", func(t *testing.T) {
		ch := make(chan any, 2)
		ch <- 4
		ch <- 5
		close(ch)
		got, err := GenericReduce(ctx, ch, sum)
		assert.Equal(t, 9, await(t, got, err))
	})

	t.Run("async reducer", func(t *testing.T) {
		got, err := GenericReduce(ctx, sourceOf(1, 2, 3), func(ctx context.Context, acc, v any) (any, error) {
			return later(ctx, acc.(int)+v.(int)), nil
		}, 0)
		assert.Equal(t, 6, await(t, got, err))
	})

	t.Run("closes source", func(t *testing.T) {
		src := &closeTracker{Iterator: sourceOf(1, 2)}
		got, err := GenericReduce(ctx, src, sum, 0)
		assert.Equal(t, 3, await(t, got, err))
		assert.True(t, src.isClosed())
	})
}

func TestGenericReduce_Deferred(t *testing.T) {
	got, err := GenericReduce(context.Background(), future.Resolved([]any{1, 2, 3}), sum)
	require.True(t, future.IsPending(got))
	assert.Equal(t, 6, await(t, got, err))
}

func TestGenericReduce_DelegatesToContainer(t *testing.T) {
	ctx := context.Background()

	got, err := GenericReduce(ctx, bag{items: []any{1, 2, 3}}, sum, 10)
	require.NoError(t, err)
	assert.Equal(t, 16, got)

	got, err = GenericReduce(ctx, chain{items: []any{1, 2, 3}}, sum)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	got, err = GenericReduce(ctx, chain{items: []any{1, 2, 3}}, func(ctx context.Context, acc, v any) (any, error) {
		return later(ctx, acc.(int)+v.(int)), nil
	}, 0)
	assert.Equal(t, 6, await(t, got, err))
}
