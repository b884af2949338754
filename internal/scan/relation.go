package scan

import "memscan/internal/memory"

// Relation compares a candidate's previously recorded value to the value
// just read from the region. Candidates for which it returns false are dropped.
type Relation[T memory.Value] func(old, current T) bool

// Increased keeps values that grew since the last pass.
func Increased[T memory.Value](old, current T) bool { return current > old }

// Decreased keeps values that shrank since the last pass.
func Decreased[T memory.Value](old, current T) bool { return current < old }

// Changed keeps values that differ from the last pass.
func Changed[T memory.Value](old, current T) bool { return current != old }

// Unchanged keeps values equal to the last pass.
func Unchanged[T memory.Value](old, current T) bool { return current == old }

// IncreasedBy keeps values that grew by exactly d.
func IncreasedBy[T memory.Value](d T) Relation[T] {
	return func(old, current T) bool { return current-old == d && current > old }
}

// DecreasedBy keeps values that shrank by exactly d.
func DecreasedBy[T memory.Value](d T) Relation[T] {
	return func(old, current T) bool { return old-current == d && current < old }
}

// Within keeps values in [lo, hi] regardless of what was seen before.
func Within[T memory.Value](lo, hi T) Relation[T] {
	return func(_, current T) bool { return current >= lo && current <= hi }
}

// Always and Never are the trivial relations.
func Always[T memory.Value](_, _ T) bool { return true }

func Never[T memory.Value](_, _ T) bool { return false }
