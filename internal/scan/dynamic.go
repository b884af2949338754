package scan

import (
	"fmt"
	"strings"

	"memscan/internal/memory"
)

// Criterion is a refinement expressed in text form, as produced by the
// command parser. Args are parsed with the scanner's value type.
type Criterion struct {
	Name string
	Args []string
}

// Criterion names understood by Scanner.Refine.
const (
	CritEqual     = "eq"
	CritIncreased = "inc"
	CritDecreased = "dec"
	CritChanged   = "changed"
	CritUnchanged = "unchanged"
	CritRange     = "range"
	CritAny       = "any"
)

func (c Criterion) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// arity holds the minimum and maximum argument count per criterion.
var arity = map[string][2]int{
	CritEqual:     {1, 1},
	CritIncreased: {0, 1},
	CritDecreased: {0, 1},
	CritChanged:   {0, 0},
	CritUnchanged: {0, 0},
	CritRange:     {2, 2},
	CritAny:       {0, 0},
}

// Arity returns the accepted argument range for a criterion name.
func Arity(name string) (lo, hi int, ok bool) {
	n, ok := arity[name]
	return n[0], n[1], ok
}

// Match is a candidate with its value rendered as text.
type Match struct {
	Offset int
	Value  string
}

// Scanner is a Session whose value type is picked at runtime.
type Scanner interface {
	Kind() Kind
	Len() int
	Region() *memory.Region
	Refine(Criterion) error
	Results() []Match
}

// Start runs the initial pass for kind over r. An empty target or "?" keeps
// every aligned offset.
func Start(kind Kind, r *memory.Region, target string, opts ...Option) (Scanner, error) {
	switch kind {
	case KindInt8:
		return start[int8](kind, r, target, opts)
	case KindInt16:
		return start[int16](kind, r, target, opts)
	case KindInt32:
		return start[int32](kind, r, target, opts)
	case KindInt64:
		return start[int64](kind, r, target, opts)
	case KindUint8:
		return start[uint8](kind, r, target, opts)
	case KindUint16:
		return start[uint16](kind, r, target, opts)
	case KindUint32:
		return start[uint32](kind, r, target, opts)
	case KindUint64:
		return start[uint64](kind, r, target, opts)
	case KindFloat32:
		return start[float32](kind, r, target, opts)
	case KindFloat64:
		return start[float64](kind, r, target, opts)
	}
	return nil, fmt.Errorf("unsupported kind %v", kind)
}

func start[T memory.Value](kind Kind, r *memory.Region, target string, opts []Option) (Scanner, error) {
	target = strings.TrimSpace(target)
	if target == "" || target == "?" {
		s, err := NewUnknown[T](r, opts...)
		if err != nil {
			return nil, err
		}
		return &typed[T]{kind: kind, s: s}, nil
	}
	v, err := ParseValue[T](target)
	if err != nil {
		return nil, err
	}
	s, err := New(r, v, opts...)
	if err != nil {
		return nil, err
	}
	return &typed[T]{kind: kind, s: s}, nil
}

type typed[T memory.Value] struct {
	kind Kind
	s    *Session[T]
}

func (t *typed[T]) Kind() Kind             { return t.kind }
func (t *typed[T]) Len() int               { return t.s.Len() }
func (t *typed[T]) Region() *memory.Region { return t.s.Region() }

func (t *typed[T]) Results() []Match {
	cands := t.s.Results()
	out := make([]Match, len(cands))
	for i, c := range cands {
		out[i] = Match{Offset: c.OffsetFromBase(), Value: fmt.Sprint(c.Value)}
	}
	return out
}

func (t *typed[T]) Refine(c Criterion) error {
	args, err := t.args(c)
	if err != nil {
		return err
	}
	switch c.Name {
	case CritEqual:
		return t.s.NextValue(args[0])
	case CritIncreased:
		if len(args) == 1 {
			return t.s.NextRelation(IncreasedBy(args[0]))
		}
		return t.s.NextRelation(Increased[T])
	case CritDecreased:
		if len(args) == 1 {
			return t.s.NextRelation(DecreasedBy(args[0]))
		}
		return t.s.NextRelation(Decreased[T])
	case CritChanged:
		return t.s.NextRelation(Changed[T])
	case CritUnchanged:
		return t.s.NextRelation(Unchanged[T])
	case CritRange:
		return t.s.NextRelation(Within(args[0], args[1]))
	case CritAny:
		return t.s.NextRelation(Always[T])
	}
	return fmt.Errorf("unknown criterion %q", c.Name)
}

func (t *typed[T]) args(c Criterion) ([]T, error) {
	n, ok := arity[c.Name]
	if !ok {
		return nil, fmt.Errorf("unknown criterion %q", c.Name)
	}
	if len(c.Args) < n[0] || len(c.Args) > n[1] {
		return nil, fmt.Errorf("%s: expected %d-%d arguments, got %d", c.Name, n[0], n[1], len(c.Args))
	}
	out := make([]T, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := ParseValue[T](a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		out = append(out, v)
	}
	return out, nil
}
