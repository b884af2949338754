// Package memory provides a bounds-checked, typed view over caller-owned byte
// buffers. A Region never copies or mutates the bytes it borrows; the owner
// may change them between reads, but not the region's shape.
package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRegion is returned when a region is constructed over an empty buffer.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrOutOfBounds is returned when a read would leave the region or is not
	// aligned to the stride of the value being read.
	ErrOutOfBounds = errors.New("out of bounds")
)

// Region is a read-only window over [addr, addr+len(data)).
type Region struct {
	addr uint64
	data []byte
}

// NewRegion creates a region over data with a display address of zero.
func NewRegion(data []byte) (*Region, error) {
	return NewRegionAt(0, data)
}

// NewRegionAt creates a region over data whose first byte is shown as addr.
// The address is only used for display and address/offset translation.
func NewRegionAt(addr uint64, data []byte) (*Region, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: zero length", ErrInvalidRegion)
	}
	return &Region{addr: addr, data: data}, nil
}

// Len returns the byte length of the region.
func (r *Region) Len() int { return len(r.data) }

// Addr returns the display address of the first byte.
func (r *Region) Addr() uint64 { return r.addr }

// EndAddr returns the address immediately after the last byte.
func (r *Region) EndAddr() uint64 { return r.addr + uint64(len(r.data)) }

// Contains reports whether addr falls inside the region.
func (r *Region) Contains(addr uint64) bool {
	return addr >= r.addr && addr < r.EndAddr()
}

// OffsetOf translates an absolute address into an offset from the region base.
func (r *Region) OffsetOf(addr uint64) (int, error) {
	if !r.Contains(addr) {
		return 0, fmt.Errorf("%w: address 0x%x outside 0x%x-0x%x", ErrOutOfBounds, addr, r.addr, r.EndAddr())
	}
	return int(addr - r.addr), nil
}

// AddrOf translates an offset into an absolute address.
func (r *Region) AddrOf(offset int) uint64 {
	return r.addr + uint64(offset)
}

func (r *Region) String() string {
	return fmt.Sprintf("0x%x-0x%x (size %d)", r.addr, r.EndAddr(), len(r.data))
}

// bytes returns a copy-free view of n bytes at offset, checking bounds and
// alignment to n.
func (r *Region) bytes(offset, n int) ([]byte, error) {
	if offset < 0 || offset+n > len(r.data) {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d (region length %d)", ErrOutOfBounds, n, offset, len(r.data))
	}
	if offset%n != 0 {
		return nil, fmt.Errorf("%w: offset %d not aligned to %d", ErrOutOfBounds, offset, n)
	}
	return r.data[offset : offset+n], nil
}

// ReadAt decodes the value of type T stored at offset. The bytes are copied
// into the result using the host byte order.
func ReadAt[T Value](r *Region, offset int) (T, error) {
	var zero T
	b, err := r.bytes(offset, SizeOf[T]())
	if err != nil {
		return zero, err
	}
	return decode[T](b), nil
}

// Slice returns a copy of length bytes at offset. Unlike ReadAt it does not
// require alignment.
func (r *Region) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return nil, fmt.Errorf("%w: slice [%d:%d] (region length %d)", ErrOutOfBounds, offset, offset+length, len(r.data))
	}
	out := make([]byte, length)
	copy(out, r.data[offset:offset+length])
	return out, nil
}
