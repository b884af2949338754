package scan

import (
	"fmt"
	"time"
)

// Op identifies the kind of pass a Stats value describes.
type Op int

const (
	OpExact    Op = iota // exact value, initial or refinement
	OpMatch              // initial pass with a predicate
	OpUnknown            // initial pass keeping every offset
	OpRelation           // refinement by relation
)

func (o Op) String() string {
	switch o {
	case OpExact:
		return "exact"
	case OpMatch:
		return "match"
	case OpUnknown:
		return "unknown"
	case OpRelation:
		return "relation"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Stats describes one completed pass. For the initial pass Before is the
// number of positions visited.
type Stats struct {
	Op      Op
	Before  int
	After   int
	Elapsed time.Duration
}

// Observer receives pass statistics. It is called synchronously on the
// scanning goroutine.
type Observer interface {
	ObservePass(Stats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Stats)

func (f ObserverFunc) ObservePass(s Stats) { f(s) }
