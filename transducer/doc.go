// Package transducer builds reducer-to-reducer transforms for
// fold.GenericTransform and fold.GenericReduce.
//
// Every builder resolves a pending callback result before calling the next
// reducer, so transducers work unchanged with synchronous and asynchronous
// callbacks.
//
//	odd := transducer.Filter(isOdd)
//	square := transducer.Map(sq)
//	out, err := fold.GenericTransform(ctx, []any{1, 2, 3, 4, 5},
//	    transducer.Compose(odd, square), []any{})
//	// out == []any{1, 9, 25}
package transducer
