// Package optional implements a value which may or may not be set.
package optional

// Optional holds a value of type T which may be unset. The zero value is an
// unset Optional.
type Optional[T any] struct {
	value T
	set   bool
}

// Set stores val.
func (o *Optional[T]) Set(val T) {
	o.value = val
	o.set = true
}

// Get returns the stored value. It returns the zero value of T when nothing
// has been set, use HasValue to tell the two apart.
func (o Optional[T]) Get() T {
	return o.value
}

// HasValue returns true if a value has been set.
func (o Optional[T]) HasValue() bool {
	return o.set
}
