package cmd

import (
	"fmt"
	"io"

	"memscan/internal/memory"
	"memscan/internal/scan"
)

// findValue parses value as kind and returns the aligned offsets holding it.
// first stops at the first match.
func findValue(kind scan.Kind, r *memory.Region, value string, first bool) ([]int, error) {
	switch kind {
	case scan.KindInt8:
		return find[int8](r, value, first)
	case scan.KindInt16:
		return find[int16](r, value, first)
	case scan.KindInt32:
		return find[int32](r, value, first)
	case scan.KindInt64:
		return find[int64](r, value, first)
	case scan.KindUint8:
		return find[uint8](r, value, first)
	case scan.KindUint16:
		return find[uint16](r, value, first)
	case scan.KindUint32:
		return find[uint32](r, value, first)
	case scan.KindUint64:
		return find[uint64](r, value, first)
	case scan.KindFloat32:
		return find[float32](r, value, first)
	case scan.KindFloat64:
		return find[float64](r, value, first)
	}
	return nil, fmt.Errorf("unsupported kind %v", kind)
}

func find[T memory.Value](r *memory.Region, value string, first bool) ([]int, error) {
	v, err := scan.ParseValue[T](value)
	if err != nil {
		return nil, err
	}
	if !first {
		return memory.FindAll(r, v), nil
	}
	if off, ok := memory.Find(r, v); ok {
		return []int{off}, nil
	}
	return nil, nil
}

// dumpAs writes r as rows of kind-sized values.
func dumpAs(kind scan.Kind, w io.Writer, r *memory.Region, perLine int) error {
	switch kind {
	case scan.KindInt8:
		return memory.Dump[int8](w, r, perLine)
	case scan.KindInt16:
		return memory.Dump[int16](w, r, perLine)
	case scan.KindInt32:
		return memory.Dump[int32](w, r, perLine)
	case scan.KindInt64:
		return memory.Dump[int64](w, r, perLine)
	case scan.KindUint8:
		return memory.Dump[uint8](w, r, perLine)
	case scan.KindUint16:
		return memory.Dump[uint16](w, r, perLine)
	case scan.KindUint32:
		return memory.Dump[uint32](w, r, perLine)
	case scan.KindUint64:
		return memory.Dump[uint64](w, r, perLine)
	case scan.KindFloat32:
		return memory.Dump[float32](w, r, perLine)
	case scan.KindFloat64:
		return memory.Dump[float64](w, r, perLine)
	}
	return fmt.Errorf("unsupported kind %v", kind)
}
