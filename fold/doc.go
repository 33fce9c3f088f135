// Package fold is the container-agnostic core of foldkit: one reduce, map,
// filter, and flatMap that work over every container Kind.
//
// Classify maps a runtime value to exactly one Kind. GenericReduce walks the
// value according to its Kind and stays synchronous until a reducer returns a
// *future.Future; from then on the rest of the walk runs in the background
// from the same position and the caller receives a future.
//
// # Kinds
//
//   - Sequence: []any, typed slices and arrays
//   - Record: map[string]any and other string-keyed maps (sorted key order)
//   - Set, KeyedMap: *collection.Set, *collection.OrderedMap, other maps
//   - Text, Binary: string (per rune) and []byte (per byte)
//   - PullSource: iter.Seq[any], iter.Seq2[any, error]
//   - AsyncPullSource: pipeline.Iterator[any] and receive channels
//   - Deferred: *future.Future, awaited before dispatch
//   - Foldable, Chainable: containers that fold or flat-map themselves
//   - Nil, Value: folded as a single element
//
// # Transform
//
// GenericTransform binds a Transducer to the append reducer of its target.
// Targets are matched in a fixed order (sequence, binary, nil, text,
// Concatable, io.Writer, set, keyed map, record); anything else folds with
// the identity reducer.
//
//	out, err := fold.GenericTransform(ctx, []any{1, 2, 3}, t, []any{})
//
// # Flattening
//
// FlatMappingIterator flattens a pull source lazily. FlatMappingAsyncIterator
// flattens an asynchronous source with a bounded number of in-flight
// productions; see WithConcurrency and WithRaceTimeout.
package fold
