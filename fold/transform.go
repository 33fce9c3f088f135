package fold

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/kbukum/foldkit/collection"
	"github.com/kbukum/foldkit/errors"
	"github.com/kbukum/foldkit/future"
)

// target describes how items are appended to one kind of transform target.
type target struct {
	name   string
	match  func(t any) bool
	append Reducer
}

// targets is checked in order; the first match wins.
var targets = []target{
	{name: "sequence", match: isSliceTarget, append: appendSlice},
	{name: "binary", match: is[[]byte], append: appendBinary},
	{name: "nil", match: func(t any) bool { return t == nil }, append: appendNothing},
	{name: "text", match: is[string], append: appendText},
	{name: "concatable", match: is[Concatable], append: appendConcat},
	{name: "writer", match: is[io.Writer], append: appendWriter},
	{name: "set", match: is[*collection.Set], append: appendSet},
	{name: "keyed_map", match: is[*collection.OrderedMap], append: appendKeyed},
	{name: "record", match: is[map[string]any], append: appendRecord},
}

func is[T any](t any) bool {
	_, ok := t.(T)
	return ok
}

// AppendReducer returns the reducer that appends items to targets shaped
// like t. Targets matching no known shape get a reducer that returns the
// accumulator unchanged.
func AppendReducer(t any) Reducer {
	for _, tg := range targets {
		if tg.match(t) {
			return tg.append
		}
	}
	return identity
}

// GenericTransform folds coll through t bound to the append reducer of
// into, starting from into. into may be a Resolver, in which case it is
// called with coll to produce the target.
func GenericTransform(ctx context.Context, coll any, t Transducer, into any) (any, error) {
	if resolve, ok := AsResolver(into); ok {
		out, err := resolve(ctx, coll)
		if into, err = future.Resolve(ctx, out, err); err != nil {
			return nil, err
		}
	}
	if f, ok := into.(*future.Future); ok {
		v, err := f.Await(ctx)
		if err != nil {
			return nil, err
		}
		into = v
	}
	return GenericReduce(ctx, coll, t(AppendReducer(into)), into)
}

func identity(_ context.Context, acc, _ any) (any, error) { return acc, nil }

func isSliceTarget(t any) bool {
	if _, ok := t.([]byte); ok {
		return false
	}
	if _, ok := t.([]any); ok {
		return true
	}
	return reflect.ValueOf(t).Kind() == reflect.Slice
}

func appendSlice(_ context.Context, acc, item any) (any, error) {
	if s, ok := acc.([]any); ok {
		return append(s, item), nil
	}
	rv := reflect.ValueOf(acc)
	elem := rv.Type().Elem()
	iv := reflect.ValueOf(item)
	if !iv.IsValid() {
		iv = reflect.Zero(elem)
		switch elem.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		default:
			return nil, errors.ShapeMismatch("transform", item)
		}
	}
	if !iv.Type().AssignableTo(elem) {
		if !iv.Type().ConvertibleTo(elem) || iv.Kind() != elem.Kind() {
			return nil, errors.ShapeMismatch("transform", item)
		}
		iv = iv.Convert(elem)
	}
	return reflect.Append(rv, iv).Interface(), nil
}

func appendBinary(_ context.Context, acc, item any) (any, error) {
	b := acc.([]byte)
	switch v := item.(type) {
	case byte:
		return append(b, v), nil
	case int:
		if v < 0 || v > 255 {
			return nil, errors.ShapeMismatch("transform", item).WithDetail("reason", "byte out of range")
		}
		return append(b, byte(v)), nil
	case rune:
		return append(b, string(v)...), nil
	case []byte:
		return append(b, v...), nil
	case string:
		return append(b, v...), nil
	}
	return nil, errors.ShapeMismatch("transform", item)
}

func appendNothing(context.Context, any, any) (any, error) { return nil, nil }

func appendText(_ context.Context, acc, item any) (any, error) {
	s := acc.(string)
	switch v := item.(type) {
	case string:
		return s + v, nil
	case rune:
		return s + string(v), nil
	case []byte:
		return s + string(v), nil
	}
	return s + fmt.Sprint(item), nil
}

func appendConcat(_ context.Context, acc, item any) (any, error) {
	return acc.(Concatable).Concat(item), nil
}

func appendWriter(_ context.Context, acc, item any) (any, error) {
	w := acc.(io.Writer)
	var err error
	switch v := item.(type) {
	case []byte:
		_, err = w.Write(v)
	case string:
		_, err = io.WriteString(w, v)
	default:
		_, err = fmt.Fprint(w, item)
	}
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func appendSet(_ context.Context, acc, item any) (any, error) {
	if item != nil && !reflect.TypeOf(item).Comparable() {
		return nil, errors.ShapeMismatch("transform", item).WithDetail("reason", "set element is not comparable")
	}
	return acc.(*collection.Set).Add(item), nil
}

func appendKeyed(_ context.Context, acc, item any) (any, error) {
	m := acc.(*collection.OrderedMap)
	switch v := item.(type) {
	case collection.Pair:
		if v.Key != nil && !reflect.TypeOf(v.Key).Comparable() {
			return nil, errors.ShapeMismatch("transform", v.Key).WithDetail("reason", "map key is not comparable")
		}
		return m.Set(v.Key, v.Value), nil
	case *collection.OrderedMap:
		for k, val := range v.All() {
			m.Set(k, val)
		}
		return m, nil
	}
	return nil, errors.ShapeMismatch("transform", item)
}

func appendRecord(_ context.Context, acc, item any) (any, error) {
	m := acc.(map[string]any)
	switch v := item.(type) {
	case map[string]any:
		for k, val := range v {
			m[k] = val
		}
		return m, nil
	case collection.Pair:
		k, ok := v.Key.(string)
		if !ok {
			return nil, errors.ShapeMismatch("transform", v.Key).WithDetail("reason", "record key must be a string")
		}
		m[k] = v.Value
		return m, nil
	}
	if Classify(item) == KindRecord {
		keys, vals := recordEntries(item)
		for i, k := range keys {
			m[k] = vals[i]
		}
		return m, nil
	}
	return nil, errors.ShapeMismatch("transform", item)
}
