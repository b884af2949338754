package memory

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// DefaultPerLine is the number of values Dump writes per line when perLine <= 0.
const DefaultPerLine = 16

// Dump writes the region as hex values of type T, perLine values per line,
// each line prefixed with the address of its first value. Trailing bytes that
// do not make a complete value are not written.
func Dump[T Value](w io.Writer, r *Region, perLine int) error {
	if perLine <= 0 {
		perLine = DefaultPerLine
	}
	var rd Reader[T]
	width := rd.Stride() * 2
	bw := bufio.NewWriter(w)

	var line strings.Builder
	n := rd.Count(r)
	for i := range n {
		if i%perLine == 0 {
			fmt.Fprintf(&line, "%016x ", r.AddrOf(i*rd.Stride()))
		}
		v, err := rd.ValueAt(r, i)
		if err != nil {
			return err
		}
		fmt.Fprintf(&line, " %0*x", width, hexBits(v))
		if i%perLine == perLine-1 || i == n-1 {
			line.WriteByte('\n')
			if _, err := bw.WriteString(line.String()); err != nil {
				return err
			}
			line.Reset()
		}
	}
	return bw.Flush()
}

// hexBits returns the raw bit pattern of v so that negative and floating
// point values print as their stored representation.
func hexBits[T Value](v T) uint64 {
	b := Encode(make([]byte, 0, 8), v)
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	default:
		return binary.NativeEndian.Uint64(b)
	}
}
