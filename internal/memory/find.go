package memory

import "bytes"

// Find returns the offset of the first stride-aligned value equal to v.
func Find[T Value](r *Region, v T) (int, bool) {
	var rd Reader[T]
	for i := range rd.Count(r) {
		if got, _ := rd.ValueAt(r, i); got == v {
			return i * rd.Stride(), true
		}
	}
	return 0, false
}

// FindAll returns the offsets of every stride-aligned value equal to v in
// ascending order.
func FindAll[T Value](r *Region, v T) []int {
	var rd Reader[T]
	var offsets []int
	for i := range rd.Count(r) {
		if got, _ := rd.ValueAt(r, i); got == v {
			offsets = append(offsets, i*rd.Stride())
		}
	}
	return offsets
}

// FindBytes returns every offset where pattern occurs. Matches may overlap and
// are not aligned to any stride.
func FindBytes(r *Region, pattern []byte) []int {
	if len(pattern) == 0 {
		return nil
	}
	var offsets []int
	data := r.data
	base := 0
	for {
		i := bytes.Index(data[base:], pattern)
		if i < 0 {
			return offsets
		}
		offsets = append(offsets, base+i)
		base += i + 1
		if base >= len(data) {
			return offsets
		}
	}
}
