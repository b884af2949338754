// Package command parses the one-line refinement language shared by the
// interactive view and the script runner.
//
//	= 99 | eq 99 | 99       keep candidates now equal to 99
//	inc [d] | + [d]         increased (by exactly d)
//	dec [d] | - [d]         decreased (by exactly d)
//	changed | !=            value differs from last pass
//	unchanged | same        value equal to last pass
//	range lo hi             value within [lo, hi]
//	any | refresh           keep everything, record current values
//
// Blank lines and lines starting with '#' are ignored.
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"memscan/internal/scan"
)

// ErrEmpty is returned by Parse for blank and comment lines.
var ErrEmpty = errors.New("empty command")

var aliases = map[string]string{
	"=":         scan.CritEqual,
	"==":        scan.CritEqual,
	"eq":        scan.CritEqual,
	"value":     scan.CritEqual,
	"+":         scan.CritIncreased,
	"inc":       scan.CritIncreased,
	"increased": scan.CritIncreased,
	"up":        scan.CritIncreased,
	"-":         scan.CritDecreased,
	"dec":       scan.CritDecreased,
	"decreased": scan.CritDecreased,
	"down":      scan.CritDecreased,
	"!=":        scan.CritChanged,
	"changed":   scan.CritChanged,
	"unchanged": scan.CritUnchanged,
	"same":      scan.CritUnchanged,
	"range":     scan.CritRange,
	"between":   scan.CritRange,
	"any":       scan.CritAny,
	"refresh":   scan.CritAny,
}

// Parse turns a line into a criterion. A line consisting of a single value
// is shorthand for "eq value".
func Parse(line string) (scan.Criterion, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return scan.Criterion{}, ErrEmpty
	}

	word := strings.ToLower(fields[0])
	name, ok := aliases[word]
	if !ok {
		if len(fields) == 1 && looksNumeric(word) {
			return scan.Criterion{Name: scan.CritEqual, Args: fields}, nil
		}
		return scan.Criterion{}, fmt.Errorf("unknown command %q", fields[0])
	}

	args := fields[1:]
	lo, hi, _ := scan.Arity(name)
	if len(args) < lo || len(args) > hi {
		return scan.Criterion{}, fmt.Errorf("%s takes %s, got %d", word, plural(lo, hi), len(args))
	}
	return scan.Criterion{Name: name, Args: args}, nil
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' && len(s) > 1 || c == '.' || c >= '0' && c <= '9'
}

func plural(lo, hi int) string {
	switch {
	case lo == hi && lo == 1:
		return "1 argument"
	case lo == hi:
		return fmt.Sprintf("%d arguments", lo)
	}
	return fmt.Sprintf("%d to %d arguments", lo, hi)
}

// Step is the outcome of applying one command.
type Step struct {
	Line      int
	Criterion scan.Criterion
	Remaining int
}

// Apply parses line and refines s with it. It returns ErrEmpty for lines
// with nothing to do.
func Apply(s scan.Scanner, line string) (scan.Criterion, error) {
	c, err := Parse(line)
	if err != nil {
		return c, err
	}
	return c, s.Refine(c)
}

// Run applies every command read from r in order, calling fn after each one.
// It stops at the first error, when ctx is done, or at EOF.
func Run(ctx context.Context, s scan.Scanner, r io.Reader, fn func(Step) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := Apply(s, sc.Text())
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if fn != nil {
			if err := fn(Step{Line: n, Criterion: c, Remaining: s.Len()}); err != nil {
				return err
			}
		}
	}
	return sc.Err()
}
