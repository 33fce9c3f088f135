package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/foldkit/fold"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/logger"
	"github.com/kbukum/foldkit/observability"
	"github.com/kbukum/foldkit/pipeline"
	"github.com/kbukum/foldkit/validation"
)

// DefaultLimit is the concurrency limit used when a caller passes zero and
// no other default has been configured.
const DefaultLimit = 10

var defaultLimit atomic.Int64

func init() {
	defaultLimit.Store(DefaultLimit)
}

// SetDefaultLimit changes the limit substituted for a zero limit. Values
// below one restore DefaultLimit.
func SetDefaultLimit(n int) {
	if n < 1 {
		n = DefaultLimit
	}
	defaultLimit.Store(int64(n))
}

// Limit returns the limit substituted for a zero limit.
func Limit() int {
	return int(defaultLimit.Load())
}

// resolveLimit substitutes the default for zero and rejects negative limits.
func resolveLimit(limit int) (int, error) {
	if limit == 0 {
		return Limit(), nil
	}
	if err := validation.Positive("limit", limit); err != nil {
		return 0, err
	}
	return limit, nil
}

// Map applies m to every element of coll with at most limit mapper calls
// outstanding at any instant, and returns a container of the same kind with
// every value resolved. A limit of zero uses the configured default.
//
// A slot is taken before each call to m. A plain result is stored at once and
// frees its slot; a pending result keeps the slot until it settles. The first
// failure stops admission and is returned unmodified; results that completed
// are discarded.
func Map(ctx context.Context, coll any, limit int, m fold.Mapper) (any, error) {
	limit, err := resolveLimit(limit)
	if err != nil {
		return nil, err
	}
	if err := validation.Required("mapper", m); err != nil {
		return nil, err
	}
	if f, ok := coll.(*future.Future); ok {
		if coll, err = f.Await(ctx); err != nil {
			return nil, err
		}
	}
	items, build, err := fold.Spread(coll)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, id)
	kind := fold.Classify(coll).String()
	ctx, span := observability.StartSpan(ctx, observability.SpanPoolMap,
		attribute.String(observability.AttrRunID, id),
		attribute.Int(observability.AttrLimit, limit),
		attribute.String(observability.AttrKind, kind),
		attribute.Int(observability.AttrSize, len(items)),
	)
	start := time.Now()
	out, err := run(ctx, items, limit, m)
	observability.EndSpan(span, err)

	log := logger.Get("pool").WithContext(ctx)
	if err != nil {
		observability.Engine().RecordRun(ctx, "map", "error")
		log.Debug("pool map failed", logger.ErrorFields("map", err))
		return nil, err
	}
	observability.Engine().RecordRun(ctx, "map", "ok")
	log.Debug("pool map finished", logger.DurationFields("map", time.Since(start)),
		logger.Fields(logger.FieldKind, kind, logger.FieldLimit, limit, logger.FieldCount, len(items)))
	return build(out)
}

// MapAsync runs Map in the background and returns a future for its result.
func MapAsync(ctx context.Context, coll any, limit int, m fold.Mapper) *future.Future {
	return future.Go(ctx, func(ctx context.Context) (any, error) {
		return Map(ctx, coll, limit, m)
	})
}

// run maps items in order of admission and returns the resolved results in
// their original positions.
func run(ctx context.Context, items []any, limit int, m fold.Mapper) ([]any, error) {
	var (
		slots   = semaphore.NewWeighted(int64(limit))
		metrics = observability.Engine()
		out     = make([]any, len(items))
		admit   error
	)
	g, gctx := errgroup.WithContext(ctx)
	release := func() {
		slots.Release(1)
		metrics.RecordRelease(ctx)
	}

	for i, v := range items {
		waitStart := time.Now()
		if admit = slots.Acquire(gctx, 1); admit != nil {
			break
		}
		metrics.RecordAdmit(ctx, time.Since(waitStart))

		r, err := m(gctx, v)
		if err != nil {
			release()
			g.Go(func() error { return err })
			break
		}
		f, pending := r.(*future.Future)
		if !pending {
			out[i] = r
			release()
			continue
		}
		g.Go(func() error {
			defer release()
			v, err := f.Await(gctx)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if admit != nil {
		return nil, admit
	}
	return out, nil
}

// Stream maps values pulled from src with at most limit mapper calls
// outstanding and yields the resolved results in completion order. The first
// error from src or m ends the stream. Closing the returned iterator closes
// src.
func Stream(ctx context.Context, src pipeline.Iterator[any], limit int, m fold.Mapper) (pipeline.Iterator[any], error) {
	limit, err := resolveLimit(limit)
	if err != nil {
		return nil, err
	}
	if err := validation.Required("mapper", m); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, id)
	ctx, span := observability.StartSpan(ctx, observability.SpanPoolStream,
		attribute.String(observability.AttrRunID, id),
		attribute.Int(observability.AttrLimit, limit),
	)

	metrics := observability.Engine()
	queue := pipeline.Map(pipeline.From(src), func(_ context.Context, v any) (queued, error) {
		return queued{v: v, at: time.Now()}, nil
	})
	mapped := pipeline.Parallel(queue, limit, func(ctx context.Context, q queued) (any, error) {
		metrics.RecordAdmit(ctx, time.Since(q.at))
		defer metrics.RecordRelease(ctx)
		r, err := m(ctx, q.v)
		return future.Resolve(ctx, r, err)
	})
	s := &stream{ctx: ctx, span: span}
	counted := pipeline.Tap(mapped, func(context.Context, any) error {
		s.count++
		return nil
	})
	s.it = counted.Iter(ctx)
	return s, nil
}

// queued is a source value stamped with the time it was pulled, so the wait
// for a free worker can be recorded as admission wait.
type queued struct {
	v  any
	at time.Time
}

type stream struct {
	ctx   context.Context
	it    pipeline.Iterator[any]
	span  trace.Span
	count int
	once  sync.Once
}

func (s *stream) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := s.it.Next(ctx)
	switch {
	case err != nil:
		s.finish(err)
	case !ok:
		s.finish(nil)
	}
	return v, ok, err
}

func (s *stream) Close() error {
	err := s.it.Close()
	s.finish(nil)
	return err
}

func (s *stream) finish(err error) {
	s.once.Do(func() {
		observability.EndSpan(s.span, err)
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.Engine().RecordRun(s.ctx, "stream", status)
		logger.Get("pool").WithContext(s.ctx).Debug("pool stream finished",
			logger.Fields(logger.FieldOperation, "stream", logger.FieldCount, s.count))
	})
}
