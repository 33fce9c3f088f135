package fold

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"sort"
	"unicode/utf8"

	"github.com/kbukum/foldkit/collection"
	"github.com/kbukum/foldkit/pipeline"
)

// cursor walks a synchronous collection one element at a time. A cursor may
// be advanced from different goroutines, but never concurrently.
type cursor interface {
	next() (any, bool, error)
	stop()
}

type sliceCursor struct {
	items []any
	i     int
}

func (c *sliceCursor) next() (any, bool, error) {
	if c.i >= len(c.items) {
		return nil, false, nil
	}
	v := c.items[c.i]
	c.i++
	return v, true, nil
}

func (c *sliceCursor) stop() {}

// reflectCursor walks slices and arrays of any element type.
type reflectCursor struct {
	v reflect.Value
	i int
}

func (c *reflectCursor) next() (any, bool, error) {
	if c.i >= c.v.Len() {
		return nil, false, nil
	}
	v := c.v.Index(c.i).Interface()
	c.i++
	return v, true, nil
}

func (c *reflectCursor) stop() {}

// textCursor yields one-rune strings. Invalid UTF-8 bytes are yielded as
// single-byte strings.
type textCursor struct {
	s string
	i int
}

func (c *textCursor) next() (any, bool, error) {
	if c.i >= len(c.s) {
		return nil, false, nil
	}
	_, size := utf8.DecodeRuneInString(c.s[c.i:])
	v := c.s[c.i : c.i+size]
	c.i += size
	return v, true, nil
}

func (c *textCursor) stop() {}

type binaryCursor struct {
	b []byte
	i int
}

func (c *binaryCursor) next() (any, bool, error) {
	if c.i >= len(c.b) {
		return nil, false, nil
	}
	v := c.b[c.i]
	c.i++
	return v, true, nil
}

func (c *binaryCursor) stop() {}

type pullCursor struct {
	pull   func() (any, error, bool)
	stopFn func()
}

func (c *pullCursor) next() (any, bool, error) {
	v, err, ok := c.pull()
	if err != nil {
		return nil, false, err
	}
	return v, ok, nil
}

func (c *pullCursor) stop() { c.stopFn() }

// cursorOf returns a cursor over a synchronous collection of kind k, or nil
// if k is not walked element by element.
func cursorOf(coll any, k Kind) cursor {
	switch k {
	case KindSequence:
		if items, ok := coll.([]any); ok {
			return &sliceCursor{items: items}
		}
		return &reflectCursor{v: reflect.ValueOf(coll)}
	case KindRecord:
		_, vals := recordEntries(coll)
		return &sliceCursor{items: vals}
	case KindSet:
		return &sliceCursor{items: coll.(*collection.Set).Values()}
	case KindKeyedMap:
		_, vals := keyedEntries(coll)
		return &sliceCursor{items: vals}
	case KindText:
		return &textCursor{s: coll.(string)}
	case KindBinary:
		return &binaryCursor{b: coll.([]byte)}
	case KindPullSource:
		next, stop := iter.Pull2(pullSeq(coll))
		return &pullCursor{pull: next, stopFn: stop}
	}
	return nil
}

// pullSeq returns a PullSource as a fallible sequence.
func pullSeq(coll any) iter.Seq2[any, error] {
	switch s := coll.(type) {
	case iter.Seq2[any, error]:
		return s
	case iter.Seq[any]:
		return func(yield func(any, error) bool) {
			for v := range s {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
	return func(func(any, error) bool) {}
}

// sequenceItems returns the elements of a Sequence as []any.
func sequenceItems(coll any) []any {
	if items, ok := coll.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(coll)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// recordEntries returns the keys of a Record in sorted order together with
// their values.
func recordEntries(coll any) ([]string, []any) {
	if m, ok := coll.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make([]any, len(keys))
		for i, k := range keys {
			vals[i] = m[k]
		}
		return keys, vals
	}
	rv := reflect.ValueOf(coll)
	mk := rv.MapKeys()
	sort.Slice(mk, func(i, j int) bool { return mk[i].String() < mk[j].String() })
	keys := make([]string, len(mk))
	vals := make([]any, len(mk))
	for i, k := range mk {
		keys[i] = k.String()
		vals[i] = rv.MapIndex(k).Interface()
	}
	return keys, vals
}

// keyedEntries returns the entries of a KeyedMap. Ordered maps keep
// insertion order; plain Go maps are walked in the sorted order of their
// formatted keys.
func keyedEntries(coll any) ([]any, []any) {
	if m, ok := coll.(*collection.OrderedMap); ok {
		entries := m.Entries()
		keys := make([]any, len(entries))
		vals := make([]any, len(entries))
		for i, e := range entries {
			keys[i] = e.Key
			vals[i] = e.Value
		}
		return keys, vals
	}
	rv := reflect.ValueOf(coll)
	mk := rv.MapKeys()
	sort.SliceStable(mk, func(i, j int) bool {
		return fmt.Sprint(mk[i].Interface()) < fmt.Sprint(mk[j].Interface())
	})
	keys := make([]any, len(mk))
	vals := make([]any, len(mk))
	for i, k := range mk {
		keys[i] = k.Interface()
		vals[i] = rv.MapIndex(k).Interface()
	}
	return keys, vals
}

// asyncSource adapts an AsyncPullSource to an Iterator.
func asyncSource(coll any) pipeline.Iterator[any] {
	switch s := coll.(type) {
	case pipeline.Iterator[any]:
		return s
	case <-chan any:
		return pipeline.FromChannel(s)
	case chan any:
		return pipeline.FromChannel[any](s)
	}
	return &chanIter{ch: reflect.ValueOf(coll)}
}

// chanIter reads from a receive channel of any element type.
type chanIter struct {
	ch reflect.Value
}

func (it *chanIter) Next(ctx context.Context) (any, bool, error) {
	chosen, v, ok := reflect.Select([]reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: it.ch},
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
	})
	if chosen == 1 {
		return nil, false, ctx.Err()
	}
	if !ok {
		return nil, false, nil
	}
	return v.Interface(), true, nil
}

func (it *chanIter) Close() error { return nil }
