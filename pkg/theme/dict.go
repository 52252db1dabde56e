package theme

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dict is an immutable, insertion-ordered dictionary keyed by string.
//
// Every method that changes the content returns a new Dict and leaves the
// receiver untouched, which is what lets theme snapshots share structure
// with the editor history. The zero value is an empty dictionary.
type Dict[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

// Pair is a single key/value entry used to build a Dict.
type Pair[V any] struct {
	Key   string
	Value V
}

// NewDict builds a Dict from pairs, keeping their order. A repeated key keeps
// its first position and takes the last value.
func NewDict[V any](pairs ...Pair[V]) Dict[V] {
	if len(pairs) == 0 {
		return Dict[V]{}
	}
	m := orderedmap.New[string, V](len(pairs))
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return Dict[V]{m: m}
}

// Len returns the number of entries.
func (d Dict[V]) Len() int {
	if d.m == nil {
		return 0
	}
	return d.m.Len()
}

// Get returns the value stored under key.
func (d Dict[V]) Get(key string) (V, bool) {
	if d.m == nil {
		var zero V
		return zero, false
	}
	return d.m.Get(key)
}

// Has reports whether key is present.
func (d Dict[V]) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (d Dict[V]) Keys() []string {
	keys := make([]string, 0, d.Len())
	for k := range d.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the entries in insertion order.
func (d Dict[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if d.m == nil {
			return
		}
		for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// With returns a copy where key maps to value. An existing key keeps its
// position; a new key is appended.
func (d Dict[V]) With(key string, value V) Dict[V] {
	next := d.clone(1)
	next.m.Set(key, value)
	return next
}

// Without returns a copy without key. The receiver itself is returned when
// key is absent.
func (d Dict[V]) Without(key string) Dict[V] {
	if !d.Has(key) {
		return d
	}
	next := d.clone(0)
	next.m.Delete(key)
	return next
}

func (d Dict[V]) clone(extra int) Dict[V] {
	m := orderedmap.New[string, V](d.Len() + extra)
	for k, v := range d.All() {
		m.Set(k, v)
	}
	return Dict[V]{m: m}
}
