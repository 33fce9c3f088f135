package fold

import (
	"context"
	"iter"
	"reflect"

	"github.com/kbukum/foldkit/collection"
	"github.com/kbukum/foldkit/future"
	"github.com/kbukum/foldkit/pipeline"
)

// Reducer folds one value into an accumulator. It may return a *future.Future
// for the next accumulator.
type Reducer func(ctx context.Context, acc, value any) (any, error)

// Transducer transforms a Reducer into another Reducer.
type Transducer func(Reducer) Reducer

// Mapper transforms a value. It may return a *future.Future.
type Mapper func(ctx context.Context, value any) (any, error)

// Predicate tests a value. Its (resolved) result is interpreted with Truthy.
type Predicate func(ctx context.Context, value any) (any, error)

// Resolver computes a value from a collection; used in place of an initial
// value or a transform target.
type Resolver func(ctx context.Context, coll any) (any, error)

// AsResolver reports whether v is a Resolver, either as the named type or as
// a plain function literal with the same signature.
func AsResolver(v any) (Resolver, bool) {
	switch r := v.(type) {
	case Resolver:
		return r, r != nil
	case func(context.Context, any) (any, error):
		return r, r != nil
	}
	return nil, false
}

// Foldable is a container that folds itself.
type Foldable interface {
	Reduce(ctx context.Context, r Reducer, init ...any) (any, error)
}

// Chainable is a container that flat-maps itself.
type Chainable interface {
	FlatMap(ctx context.Context, m Mapper) (any, error)
}

// Concatable is a transform target that absorbs items by concatenation.
type Concatable interface {
	Concat(item any) any
}

// Kind identifies which container variant a runtime value belongs to.
type Kind int

const (
	KindNil Kind = iota
	KindSequence
	KindRecord
	KindSet
	KindKeyedMap
	KindText
	KindBinary
	KindPullSource
	KindAsyncPullSource
	KindDeferred
	KindFoldable
	KindChainable
	KindValue
)

var kindNames = [...]string{
	KindNil:             "nil",
	KindSequence:        "sequence",
	KindRecord:          "record",
	KindSet:             "set",
	KindKeyedMap:        "keyed_map",
	KindText:            "text",
	KindBinary:          "binary",
	KindPullSource:      "pull_source",
	KindAsyncPullSource: "async_pull_source",
	KindDeferred:        "deferred",
	KindFoldable:        "foldable",
	KindChainable:       "chainable",
	KindValue:           "value",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Classify returns the container variant of v. Every value has exactly one
// Kind; values matching nothing else are KindValue. A nil pointer is KindNil
// even when its type implements Chainable or Foldable.
func Classify(v any) Kind {
	if v == nil {
		return KindNil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return KindNil
	}
	switch v.(type) {
	case []any:
		return KindSequence
	case []byte:
		return KindBinary
	case string:
		return KindText
	case *future.Future:
		return KindDeferred
	case iter.Seq[any], iter.Seq2[any, error]:
		return KindPullSource
	case pipeline.Iterator[any]:
		return KindAsyncPullSource
	case Chainable:
		return KindChainable
	case Foldable:
		return KindFoldable
	case *collection.Set:
		return KindSet
	case *collection.OrderedMap:
		return KindKeyedMap
	case map[string]any:
		return KindRecord
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindRecord
		}
		return KindKeyedMap
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir != 0 {
			return KindAsyncPullSource
		}
	}
	return KindValue
}

// Truthy reports whether v counts as true for a predicate: nil, false,
// numeric zero, and the empty string are false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
