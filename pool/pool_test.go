package pool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/foldkit/collection"
	ferrors "github.com/kbukum/foldkit/errors"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/observability"
	"github.com/kbukum/foldkit/pipeline"
)

func asyncDouble(ctx context.Context, v any) (any, error) {
	return future.Go(ctx, func(context.Context) (any, error) {
		time.Sleep(time.Millisecond)
		return v.(int) * 2, nil
	}), nil
}

// gauge counts mapper calls whose results have not settled yet.
type gauge struct {
	active atomic.Int64
	peak   atomic.Int64
}

func (p *gauge) mapper(delay time.Duration) func(context.Context, any) (any, error) {
	return func(ctx context.Context, v any) (any, error) {
		n := p.active.Add(1)
		for {
			peak := p.peak.Load()
			if n <= peak || p.peak.CompareAndSwap(peak, n) {
				break
			}
		}
		return future.Go(ctx, func(context.Context) (any, error) {
			defer p.active.Add(-1)
			time.Sleep(delay)
			return v, nil
		}), nil
	}
}

func TestMap_ScenarioDouble(t *testing.T) {
	got, err := Map(context.Background(), []any{1, 2, 3, 4, 5}, 2, asyncDouble)
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4, 6, 8, 10}, got)
}

func TestMap_BoundsOutstandingCalls(t *testing.T) {
	items := make([]any, 20)
	for i := range items {
		items[i] = i
	}
	for _, limit := range []int{1, 3, 8} {
		var p gauge
		got, err := Map(context.Background(), items, limit, p.mapper(2*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, items, got)
		assert.LessOrEqual(t, p.peak.Load(), int64(limit))
		assert.Zero(t, p.active.Load())
	}
}

func TestMap_ReachesLimit(t *testing.T) {
	var p gauge
	release := make(chan struct{})
	var once sync.Once
	m := func(ctx context.Context, v any) (any, error) {
		if p.active.Add(1) == 4 {
			once.Do(func() { close(release) })
		}
		return future.Go(ctx, func(ctx context.Context) (any, error) {
			defer p.active.Add(-1)
			select {
			case <-release:
			case <-time.After(time.Second):
			}
			return v, nil
		}), nil
	}
	_, err := Map(context.Background(), []any{1, 2, 3, 4, 5, 6}, 4, m)
	require.NoError(t, err)
	select {
	case <-release:
	default:
		t.Fatal("expected four calls outstanding at once")
	}
}

func TestMap_SyncMapperHoldsNoSlot(t *testing.T) {
	calls := 0
	got, err := Map(context.Background(), []any{1, 2, 3}, 1, func(_ context.Context, v any) (any, error) {
		calls++
		return v.(int) + 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{2, 3, 4}, got)
	assert.Equal(t, 3, calls)
}

func TestMap_Shapes(t *testing.T) {
	ctx := context.Background()

	rec, err := Map(ctx, map[string]any{"a": 1, "b": 2}, 2, asyncDouble)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2, "b": 4}, rec)

	set, err := Map(ctx, collection.NewSet(1, 2, 3), 2, asyncDouble)
	require.NoError(t, err)
	require.IsType(t, &collection.Set{}, set)
	assert.Equal(t, []any{2, 4, 6}, set.(*collection.Set).Values())

	om := collection.NewOrderedMap(collection.Pair{Key: "x", Value: 5}, collection.Pair{Key: 7, Value: 1})
	keyed, err := Map(ctx, om, 1, asyncDouble)
	require.NoError(t, err)
	require.IsType(t, &collection.OrderedMap{}, keyed)
	assert.Equal(t, []collection.Pair{{Key: "x", Value: 10}, {Key: 7, Value: 2}},
		keyed.(*collection.OrderedMap).Entries())

	empty, err := Map(ctx, []any{}, 3, asyncDouble)
	require.NoError(t, err)
	assert.Equal(t, []any{}, empty)
}

func TestMap_AwaitsFutureCollection(t *testing.T) {
	got, err := Map(context.Background(), future.Resolved([]any{1, 2}), 2, asyncDouble)
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4}, got)
}

func TestMap_ErrorIdentity(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	rejecting := func(ctx context.Context, v any) (any, error) {
		if v.(int) == 3 {
			return future.Rejected(boom), nil
		}
		return asyncDouble(ctx, v)
	}
	_, err := Map(ctx, []any{1, 2, 3, 4, 5}, 2, rejecting)
	assert.Same(t, boom, err)

	var calls atomic.Int64
	throwing := func(ctx context.Context, v any) (any, error) {
		calls.Add(1)
		if v.(int) == 2 {
			return nil, boom
		}
		return v, nil
	}
	_, err = Map(ctx, []any{1, 2, 3, 4}, 2, throwing)
	assert.Same(t, boom, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestMap_InvalidArguments(t *testing.T) {
	_, err := Map(context.Background(), []any{1}, -1, asyncDouble)
	assert.True(t, ferrors.IsCode(err, ferrors.ErrCodeInvalidArgument))

	_, err = Map(context.Background(), 42, 2, asyncDouble)
	assert.True(t, ferrors.IsCode(err, ferrors.ErrCodeShapeMismatch))

	_, err = Map(context.Background(), []any{1}, 2, nil)
	assert.True(t, ferrors.IsCode(err, ferrors.ErrCodeInvalidArgument))

	src := pipeline.FromSlice([]any{1}).Iter(context.Background())
	_, err = Stream(context.Background(), src, 2, nil)
	assert.True(t, ferrors.IsCode(err, ferrors.ErrCodeInvalidArgument))
}

func TestMap_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Map(ctx, []any{1, 2, 3}, 1, asyncDouble)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetDefaultLimit(t *testing.T) {
	t.Cleanup(func() { SetDefaultLimit(DefaultLimit) })
	assert.Equal(t, DefaultLimit, Limit())

	SetDefaultLimit(2)
	assert.Equal(t, 2, Limit())

	var p gauge
	_, err := Map(context.Background(), []any{1, 2, 3, 4, 5, 6}, 0, p.mapper(time.Millisecond))
	require.NoError(t, err)
	assert.LessOrEqual(t, p.peak.Load(), int64(2))

	SetDefaultLimit(0)
	assert.Equal(t, DefaultLimit, Limit())
}

func TestMapAsync(t *testing.T) {
	f := MapAsync(context.Background(), []any{1, 2, 3}, 2, asyncDouble)
	got, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4, 6}, got)
}

func TestMap_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	m, err := observability.NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	observability.SetEngineMetrics(m)
	t.Cleanup(func() { observability.SetEngineMetrics(nil) })

	_, err = Map(context.Background(), []any{1, 2, 3, 4, 5}, 2, asyncDouble)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if data, ok := metric.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[metric.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(5), sums[observability.MetricPoolAdmitted])
	assert.Equal(t, int64(0), sums[observability.MetricPoolInFlight])
	assert.Equal(t, int64(1), sums[observability.MetricPoolRuns])
}

func TestStream(t *testing.T) {
	src := pipeline.FromSlice([]any{1, 2, 3, 4, 5}).Iter(context.Background())
	it, err := Stream(context.Background(), src, 2, asyncDouble)
	require.NoError(t, err)
	defer it.Close()

	var got []int
	for {
		v, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v.(int))
	}
	sort.Ints(got)
	assert.Equal(t, []int{2, 4, 6, 8, 10}, got)
}

func TestStream_RecordsAdmissionWait(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	m, err := observability.NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	observability.SetEngineMetrics(m)
	t.Cleanup(func() { observability.SetEngineMetrics(nil) })

	slow := func(_ context.Context, v any) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return v, nil
	}
	src := pipeline.FromSlice([]any{1, 2, 3, 4}).Iter(context.Background())
	it, err := Stream(context.Background(), src, 1, slow)
	require.NoError(t, err)
	for {
		_, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	require.NoError(t, it.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var count uint64
	var total float64
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != observability.MetricPoolWait {
				continue
			}
			data := metric.Data.(metricdata.Histogram[float64])
			for _, dp := range data.DataPoints {
				count += dp.Count
				total += dp.Sum
			}
		}
	}
	assert.Equal(t, uint64(4), count)
	assert.Greater(t, total, 0.0)
}

func TestStream_Error(t *testing.T) {
	boom := errors.New("boom")
	src := pipeline.FromSlice([]any{1, 2, 3}).Iter(context.Background())
	it, err := Stream(context.Background(), src, 1, func(ctx context.Context, v any) (any, error) {
		if v.(int) == 2 {
			return future.Rejected(boom), nil
		}
		return v, nil
	})
	require.NoError(t, err)
	defer it.Close()

	for {
		_, ok, err := it.Next(context.Background())
		if err != nil {
			assert.ErrorIs(t, err, boom)
			return
		}
		require.True(t, ok, "stream ended without the mapper error")
	}
}

func TestStream_InvalidLimit(t *testing.T) {
	src := pipeline.FromSlice([]any{1}).Iter(context.Background())
	_, err := Stream(context.Background(), src, -2, asyncDouble)
	assert.True(t, ferrors.IsCode(err, ferrors.ErrCodeInvalidArgument))
}
