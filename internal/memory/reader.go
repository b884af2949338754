package memory

// Reader views a region as a sequence of T values laid out back to back.
type Reader[T Value] struct{}

// Stride is the distance in bytes between consecutive values.
func (Reader[T]) Stride() int { return SizeOf[T]() }

// Count returns how many complete values fit in the region. Trailing bytes
// that do not form a whole value are never visited.
func (rd Reader[T]) Count(r *Region) int {
	return r.Len() / rd.Stride()
}

// ValueAt reads the index-th value.
func (rd Reader[T]) ValueAt(r *Region, index int) (T, error) {
	return ReadAt[T](r, index*rd.Stride())
}
