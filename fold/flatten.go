package fold

import (
	"context"
	stderrors "errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/kbukum/foldkit/errors"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/logger"
	"github.com/kbukum/foldkit/observability"
	"github.com/kbukum/foldkit/pipeline"
)

// DefaultFlattenConcurrency is the number of productions a
// FlatMappingAsyncIterator keeps in flight unless configured otherwise.
const DefaultFlattenConcurrency = 20

var flattenDefaults atomic.Pointer[flattenOptions]

type flattenOptions struct {
	concurrency int
	raceTimeout time.Duration
}

// SetFlattenDefaults changes the concurrency and race timeout used by
// iterators created without explicit options.
func SetFlattenDefaults(concurrency int, raceTimeout time.Duration) {
	if concurrency < 1 {
		concurrency = DefaultFlattenConcurrency
	}
	flattenDefaults.Store(&flattenOptions{concurrency: concurrency, raceTimeout: raceTimeout})
}

func currentFlattenDefaults() flattenOptions {
	if o := flattenDefaults.Load(); o != nil {
		return *o
	}
	return flattenOptions{concurrency: DefaultFlattenConcurrency}
}

// FlattenOption configures a FlatMappingAsyncIterator.
type FlattenOption func(*flattenOptions)

// WithConcurrency bounds the number of in-flight productions.
func WithConcurrency(n int) FlattenOption {
	return func(o *flattenOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRaceTimeout bounds each wait for a pending production. When it
// elapses the iterator re-checks its buffer and the source instead of
// failing.
func WithRaceTimeout(d time.Duration) FlattenOption {
	return func(o *flattenOptions) { o.raceTimeout = d }
}

// FlatMappingIterator flat-maps a pull source lazily: each upstream value is
// mapped with m, the result is folded into a sequence, and its elements are
// yielded in order. Pending values are awaited before yielding.
func FlatMappingIterator(ctx context.Context, seq iter.Seq2[any, error], m Mapper) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for v, err := range seq {
			var items any
			if err == nil {
				items, err = flatten(ctx, v, m)
				items, err = future.Resolve(ctx, items, err)
			}
			if err != nil {
				yield(nil, err)
				return
			}
			list, _ := items.([]any)
			for _, item := range list {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// flatten maps v with m and folds the monad into a fresh []any.
func flatten(ctx context.Context, v any, m Mapper) (any, error) {
	return flattening(m, appendSlice)(ctx, []any{}, v)
}

// FlatMappingAsyncIterator flat-maps an asynchronous source with bounded
// concurrency. Productions that fold synchronously are buffered
// immediately; pending ones append their whole result when they settle, so
// elements of one monad stay together while order across upstream values is
// not guaranteed.
//
// The first failing production is sticky: every later Next returns it.
type FlatMappingAsyncIterator struct {
	source pipeline.Iterator[any]
	mapper Mapper
	slots  *semaphore.Weighted
	opts   flattenOptions
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
	id     string

	mu         sync.Mutex
	buffer     []any
	pending    int
	sourceDone bool
	closed     bool
	err        error
	wake       chan struct{}
}

var _ pipeline.Iterator[any] = (*FlatMappingAsyncIterator)(nil)

// NewFlatMappingAsyncIterator returns an iterator over the flattened results
// of m applied to every value of source. Productions run under ctx and are
// canceled by Close.
func NewFlatMappingAsyncIterator(ctx context.Context, source pipeline.Iterator[any], m Mapper, opts ...FlattenOption) *FlatMappingAsyncIterator {
	o := currentFlattenDefaults()
	for _, opt := range opts {
		opt(&o)
	}
	pctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	return &FlatMappingAsyncIterator{
		source: source,
		mapper: m,
		slots:  semaphore.NewWeighted(int64(o.concurrency)),
		opts:   o,
		ctx:    pctx,
		cancel: cancel,
		log:    logger.Get("flatten").WithFields(logger.Fields(logger.FieldRunID, id)),
		id:     id,
		wake:   make(chan struct{}, 1),
	}
}

// Next returns the next flattened value, or ok=false once the source is
// exhausted and every production has been drained.
func (it *FlatMappingAsyncIterator) Next(ctx context.Context) (any, bool, error) {
	for {
		it.mu.Lock()
		if it.closed {
			it.mu.Unlock()
			return nil, false, errors.IteratorClosed("flatMap")
		}
		if it.err != nil {
			err := it.err
			it.mu.Unlock()
			return nil, false, err
		}
		sourceDone := it.sourceDone
		it.mu.Unlock()

		pulled := false
		if !sourceDone && it.slots.TryAcquire(1) {
			if err := it.pull(ctx); err != nil {
				return nil, false, err
			}
			pulled = true
		}

		it.mu.Lock()
		if it.err != nil {
			err := it.err
			it.mu.Unlock()
			return nil, false, err
		}
		if len(it.buffer) > 0 {
			v := it.buffer[0]
			it.buffer[0] = nil
			it.buffer = it.buffer[1:]
			it.mu.Unlock()
			return v, true, nil
		}
		if it.sourceDone && it.pending == 0 {
			it.mu.Unlock()
			return nil, false, nil
		}
		waiting := it.pending > 0
		live := !it.sourceDone
		it.mu.Unlock()

		// Keep filling free slots before waiting on a production.
		if pulled && live {
			continue
		}
		if waiting {
			if err := it.wait(ctx); err != nil {
				return nil, false, err
			}
		}
	}
}

// pull takes one value from the source and starts its production. The
// caller holds one slot, which is released when the production settles.
func (it *FlatMappingAsyncIterator) pull(ctx context.Context) error {
	v, ok, err := it.source.Next(ctx)
	if err != nil {
		it.slots.Release(1)
		// The caller's own cancellation does not poison the iterator.
		if ctx.Err() == nil || !stderrors.Is(err, ctx.Err()) {
			it.fail(err)
		}
		return err
	}
	if !ok {
		it.slots.Release(1)
		it.mu.Lock()
		it.sourceDone = true
		it.mu.Unlock()
		it.log.Debug("flatten source exhausted")
		return nil
	}

	out, err := flatten(it.ctx, v, it.mapper)
	if err != nil {
		it.slots.Release(1)
		it.fail(err)
		return nil
	}
	f, isPending := out.(*future.Future)
	if !isPending {
		it.slots.Release(1)
		observability.Engine().RecordProduction(it.ctx, false)
		items, _ := out.([]any)
		it.mu.Lock()
		it.buffer = append(it.buffer, items...)
		it.mu.Unlock()
		return nil
	}

	observability.Engine().RecordProduction(it.ctx, true)
	it.mu.Lock()
	it.pending++
	it.mu.Unlock()
	go func() {
		out, err := f.Await(it.ctx)
		it.slots.Release(1)
		it.mu.Lock()
		it.pending--
		if err != nil {
			if it.err == nil {
				it.err = err
			}
		} else {
			items, _ := out.([]any)
			it.buffer = append(it.buffer, items...)
		}
		it.mu.Unlock()
		it.signal()
	}()
	return nil
}

func (it *FlatMappingAsyncIterator) fail(err error) {
	it.mu.Lock()
	if it.err == nil {
		it.err = err
	}
	it.mu.Unlock()
}

func (it *FlatMappingAsyncIterator) signal() {
	select {
	case it.wake <- struct{}{}:
	default:
	}
}

// wait blocks until a production settles, ctx is done, or the race timeout
// elapses.
func (it *FlatMappingAsyncIterator) wait(ctx context.Context) error {
	var timeout <-chan time.Time
	if it.opts.raceTimeout > 0 {
		t := time.NewTimer(it.opts.raceTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case <-it.wake:
		return nil
	case <-timeout:
		it.log.Debug("flatten wait timed out", logger.Fields(logger.FieldTimeout, it.opts.raceTimeout.String()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels pending productions and closes the source.
func (it *FlatMappingAsyncIterator) Close() error {
	it.mu.Lock()
	if it.closed {
		it.mu.Unlock()
		return nil
	}
	it.closed = true
	it.mu.Unlock()
	it.cancel()
	return it.source.Close()
}

// ID returns the run id tagged on this iterator's log lines.
func (it *FlatMappingAsyncIterator) ID() string { return it.id }
