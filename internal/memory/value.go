package memory

import (
	"encoding/binary"
	"math"
)

// Value is the set of fixed-size types a region can be scanned as.
type Value interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// SizeOf returns the encoded size of T in bytes.
func SizeOf[T Value]() int {
	var v T
	switch any(v).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	default:
		return 8
	}
}

func decode[T Value](b []byte) T {
	var v T
	order := binary.NativeEndian
	switch p := any(&v).(type) {
	case *int8:
		*p = int8(b[0])
	case *uint8:
		*p = b[0]
	case *int16:
		*p = int16(order.Uint16(b))
	case *uint16:
		*p = order.Uint16(b)
	case *int32:
		*p = int32(order.Uint32(b))
	case *uint32:
		*p = order.Uint32(b)
	case *float32:
		*p = math.Float32frombits(order.Uint32(b))
	case *int64:
		*p = int64(order.Uint64(b))
	case *uint64:
		*p = order.Uint64(b)
	case *float64:
		*p = math.Float64frombits(order.Uint64(b))
	}
	return v
}

// Encode appends the host byte order encoding of v to dst.
func Encode[T Value](dst []byte, v T) []byte {
	order := binary.NativeEndian
	switch x := any(v).(type) {
	case int8:
		return append(dst, byte(x))
	case uint8:
		return append(dst, x)
	case int16:
		return order.AppendUint16(dst, uint16(x))
	case uint16:
		return order.AppendUint16(dst, x)
	case int32:
		return order.AppendUint32(dst, uint32(x))
	case uint32:
		return order.AppendUint32(dst, x)
	case float32:
		return order.AppendUint32(dst, math.Float32bits(x))
	case int64:
		return order.AppendUint64(dst, uint64(x))
	case uint64:
		return order.AppendUint64(dst, x)
	case float64:
		return order.AppendUint64(dst, math.Float64bits(x))
	}
	return dst
}
