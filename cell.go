package mercury

import (
	"path"
	"reflect"
	"strconv"
)

// Key identifies one cached resource instance within a slice
// (a file path, a subject IRI, a collection id).
type Key string

func PathKey(p string) Key {
	if p == "" {
		return Key("/")
	}
	return Key(path.Clean("/" + p))
}

func SubjectKey(iri string) Key { return Key(iri) }

func TypeKey(iri string) Key { return Key(iri) }

func CollectionKey(id int64) Key { return Key(strconv.FormatInt(id, 10)) }

func (k Key) String() string { return string(k) }

// Cell is the cached state of one asynchronous fetch.
// Err is nil unless the last fetch failed. Loaded reports whether Data holds
// a value; a zero Data with Loaded=false means "never fetched or cleared".
type Cell[T any] struct {
	Pending     bool
	Err         error
	Invalidated bool
	Data        T
	Loaded      bool
}

// Cells maps a Key to its Cell. Cells are created on the first action for a
// key and never evicted.
type Cells[T any] map[Key]Cell[T]

// Get returns a copy of the cell stored under k, or nil when absent.
func (cs Cells[T]) Get(k Key) *Cell[T] {
	c, ok := cs[k]
	if !ok {
		return nil
	}
	return &c
}

// With returns a copy of cs where k is replaced by c.
func (cs Cells[T]) With(k Key, c Cell[T]) Cells[T] {
	out := make(Cells[T], len(cs)+1)
	for kk, v := range cs {
		out[kk] = v
	}
	out[k] = c
	return out
}

// Clone returns a shallow copy of cs, suitable for overlays that patch
// several keys in one state update.
func (cs Cells[T]) Clone() Cells[T] {
	out := make(Cells[T], len(cs))
	for k, v := range cs {
		out[k] = v
	}
	return out
}

// InvalidateWhere marks every existing cell whose key matches as
// invalidated, in a single copy. It returns cs itself when nothing changed.
func (cs Cells[T]) InvalidateWhere(match func(Key) bool) Cells[T] {
	var next Cells[T]
	for k, c := range cs {
		if c.Invalidated || !match(k) {
			continue
		}
		if next == nil {
			next = cs.Clone()
		}
		c.Invalidated = true
		next[k] = c
	}
	if next == nil {
		return cs
	}
	return next
}

// SameCells reports whether a and b are the same map instance.
// Reducers return the identical map for unrelated actions.
func SameCells[T any](a, b Cells[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
