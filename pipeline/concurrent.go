package pipeline

import (
	"context"
	"sync"
)

// Parallel applies fn to each value concurrently with up to n workers.
// Values are yielded in completion order. The first error from fn stops the
// workers and is delivered to the consumer.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	if n <= 0 {
		n = 1
	}
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			source := p.create(ctx)
			workerCtx, cancel := context.WithCancel(ctx)
			out := make(chan result[O], n)
			in := make(chan I, n)

			var wg sync.WaitGroup

			// Producer: pull from source into input channel
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer close(in)
				for {
					val, ok, err := source.Next(workerCtx)
					if err != nil {
						select {
						case out <- result[O]{err: err}:
						case <-workerCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					select {
					case in <- val:
					case <-workerCtx.Done():
						return
					}
				}
			}()

			// Workers: process input and write to output
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for val := range in {
						o, err := fn(workerCtx, val)
						if err != nil {
							select {
							case out <- result[O]{err: err}:
							case <-workerCtx.Done():
							}
							cancel()
							return
						}
						select {
						case out <- result[O]{val: o, ok: true}:
						case <-workerCtx.Done():
							return
						}
					}
				}()
			}

			go func() {
				wg.Wait()
				close(out)
			}()

			return &channelIter[O]{
				ch: out,
				closer: func() error {
					cancel()
					return source.Close()
				},
			}
		},
	}
}
