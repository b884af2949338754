package scan

import (
	"fmt"
	"strconv"
	"strings"

	"memscan/internal/memory"
)

// Kind names a value type chosen at runtime.
type Kind int

const (
	KindInt8 Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

var kindNames = map[Kind]string{
	KindInt8:    "i8",
	KindInt16:   "i16",
	KindInt32:   "i32",
	KindInt64:   "i64",
	KindUint8:   "u8",
	KindUint16:  "u16",
	KindUint32:  "u32",
	KindUint64:  "u64",
	KindFloat32: "f32",
	KindFloat64: "f64",
}

var kindAliases = map[string]Kind{
	"int8":    KindInt8,
	"char":    KindInt8,
	"int16":   KindInt16,
	"short":   KindInt16,
	"int32":   KindInt32,
	"int":     KindInt32,
	"int64":   KindInt64,
	"long":    KindInt64,
	"uint8":   KindUint8,
	"byte":    KindUint8,
	"uint16":  KindUint16,
	"uint32":  KindUint32,
	"uint":    KindUint32,
	"uint64":  KindUint64,
	"float32": KindFloat32,
	"float":   KindFloat32,
	"float64": KindFloat64,
	"double":  KindFloat64,
}

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindInt8, KindInt16, KindInt32, KindInt64, KindUint8, KindUint16, KindUint32, KindUint64, KindFloat32, KindFloat64}
}

// ParseKind accepts the short names (i32, f64, ...) and the common Go and C
// spellings (int32, uint, double, ...).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Size returns the stride of the kind in bytes.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	}
	return 8
}

// ParseValue parses s as a T. Integers accept 0x, 0o and 0b prefixes.
func ParseValue[T memory.Value](s string) (T, error) {
	var v T
	s = strings.TrimSpace(s)
	var err error
	switch p := any(&v).(type) {
	case *int8:
		var n int64
		n, err = strconv.ParseInt(s, 0, 8)
		*p = int8(n)
	case *int16:
		var n int64
		n, err = strconv.ParseInt(s, 0, 16)
		*p = int16(n)
	case *int32:
		var n int64
		n, err = strconv.ParseInt(s, 0, 32)
		*p = int32(n)
	case *int64:
		*p, err = strconv.ParseInt(s, 0, 64)
	case *uint8:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 8)
		*p = uint8(n)
	case *uint16:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 16)
		*p = uint16(n)
	case *uint32:
		var n uint64
		n, err = strconv.ParseUint(s, 0, 32)
		*p = uint32(n)
	case *uint64:
		*p, err = strconv.ParseUint(s, 0, 64)
	case *float32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		*p = float32(f)
	case *float64:
		*p, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse %q as %T: %w", s, zero, err)
	}
	return v, nil
}
