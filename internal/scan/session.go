package scan

import (
	"fmt"
	"time"

	"memscan/internal/memory"
)

// Session holds the candidate set of a progressive scan. It borrows its region
// and is not safe for concurrent use; callers serialize access themselves.
type Session[T memory.Value] struct {
	region     *memory.Region
	reader     memory.Reader[T]
	candidates []Candidate[T]
	observer   Observer
}

// Option configures a Session.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver reports the statistics of every pass to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// New runs the initial pass over r and returns a session holding every
// offset whose value equals target, in ascending order.
func New[T memory.Value](r *memory.Region, target T, opts ...Option) (*Session[T], error) {
	return newSession(r, OpExact, func(v T) bool { return v == target }, opts)
}

// NewFunc runs the initial pass keeping every offset whose value satisfies match.
func NewFunc[T memory.Value](r *memory.Region, match func(T) bool, opts ...Option) (*Session[T], error) {
	return newSession(r, OpMatch, match, opts)
}

// NewUnknown keeps every aligned offset, for scans that start without a known
// value and narrow by relation only.
func NewUnknown[T memory.Value](r *memory.Region, opts ...Option) (*Session[T], error) {
	return newSession(r, OpUnknown, func(T) bool { return true }, opts)
}

func newSession[T memory.Value](r *memory.Region, op Op, match func(T) bool, opts []Option) (*Session[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session[T]{region: r, observer: o.observer}

	start := time.Now()
	n := s.reader.Count(r)
	stride := s.reader.Stride()
	for i := range n {
		v, err := s.reader.ValueAt(r, i)
		if err != nil {
			return nil, err
		}
		if match(v) {
			s.candidates = append(s.candidates, Candidate[T]{Offset: i * stride, Value: v})
		}
	}
	s.report(op, n, start)
	return s, nil
}

// NextValue re-reads every candidate and keeps those currently equal to v.
// The previously recorded value is not consulted.
func (s *Session[T]) NextValue(v T) error {
	return s.refine(OpExact, func(_, current T) bool { return current == v })
}

// NextRelation re-reads every candidate and keeps those for which
// rel(recorded, current) holds, recording the current value.
func (s *Session[T]) NextRelation(rel Relation[T]) error {
	return s.refine(OpRelation, rel)
}

// refine either applies to every candidate or, on error, leaves the session
// untouched.
func (s *Session[T]) refine(op Op, keep Relation[T]) error {
	if len(s.candidates) == 0 {
		return nil
	}
	if err := s.validate(); err != nil {
		return err
	}

	start := time.Now()
	before := len(s.candidates)
	next := make([]Candidate[T], 0, before)
	for _, c := range s.candidates {
		current, err := memory.ReadAt[T](s.region, c.Offset)
		if err != nil {
			return fmt.Errorf("refine candidate at +0x%x: %w", c.Offset, err)
		}
		if keep(c.Value, current) {
			next = append(next, Candidate[T]{Offset: c.Offset, Value: current})
		}
	}
	s.candidates = next
	s.report(op, before, start)
	return nil
}

// validate checks that the highest candidate still fits in the region, so
// that a refinement cannot fail halfway through.
func (s *Session[T]) validate() error {
	last := s.candidates[len(s.candidates)-1]
	if end := last.Offset + s.reader.Stride(); end > s.region.Len() {
		return fmt.Errorf("%w: candidate at +0x%x needs %d bytes, region has %d",
			memory.ErrOutOfBounds, last.Offset, end, s.region.Len())
	}
	return nil
}

func (s *Session[T]) report(op Op, before int, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObservePass(Stats{
		Op:      op,
		Before:  before,
		After:   len(s.candidates),
		Elapsed: time.Since(start),
	})
}

// Results returns a snapshot of the candidates in ascending offset order. It
// does not re-read the region.
func (s *Session[T]) Results() []Candidate[T] {
	out := make([]Candidate[T], len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Len returns the number of candidates.
func (s *Session[T]) Len() int { return len(s.candidates) }

// Empty reports whether every candidate has been discarded.
func (s *Session[T]) Empty() bool { return len(s.candidates) == 0 }

// Region returns the region the session reads from.
func (s *Session[T]) Region() *memory.Region { return s.region }
