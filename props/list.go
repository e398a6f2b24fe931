package props

// List is a property list: a set of typed, named attributes attached to one
// owner (a CFG, Block, Edge, or Process). Attaching and removing a value is
// O(1); List is the sole cross-analysis communication channel (spec §3).
//
// List is not safe for concurrent use; the pipeline that owns it is
// single-threaded cooperative (spec §5).
type List struct {
	values map[uint64]any
}

// Get returns the value stored under id and whether it was present.
func Get[T any](l *List, id *Identifier[T]) (T, bool) {
	var zero T
	if l == nil || l.values == nil {
		return zero, false
	}
	v, ok := l.values[id.key()]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// MustGet returns the value stored under id, or the zero value if absent.
func MustGet[T any](l *List, id *Identifier[T]) T {
	v, _ := Get(l, id)
	return v
}

// Has reports whether a value is attached under id.
func Has[T any](l *List, id *Identifier[T]) bool {
	if l == nil || l.values == nil {
		return false
	}
	_, ok := l.values[id.key()]
	return ok
}

// Put attaches v under id, replacing any existing value.
func Put[T any](l *List, id *Identifier[T], v T) {
	if l.values == nil {
		l.values = make(map[uint64]any)
	}
	l.values[id.key()] = v
}

// Remove detaches the value stored under id, if any.
func Remove[T any](l *List, id *Identifier[T]) {
	if l.values == nil {
		return
	}
	delete(l.values, id.key())
}

// Len returns the number of attributes currently attached.
func (l *List) Len() int {
	return len(l.values)
}
