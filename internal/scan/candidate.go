// Package scan implements progressive value scanning over a memory.Region.
//
// A Session starts from an initial pass over the whole region and is then
// narrowed by refinement passes that re-read each surviving candidate. The
// region's bytes are expected to change between passes; its shape is not.
package scan

import "fmt"

// Candidate is a stride-aligned offset suspected to hold a value of interest,
// together with the value last observed there.
type Candidate[T any] struct {
	Offset int
	Value  T
}

// OffsetFromBase returns the candidate's byte distance from the region base.
func (c Candidate[T]) OffsetFromBase() int { return c.Offset }

func (c Candidate[T]) String() string {
	return fmt.Sprintf("+0x%x = %v", c.Offset, c.Value)
}
