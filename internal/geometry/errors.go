package geometry

import (
	"fmt"
	"strconv"
)

// LookupError reports that a required fragment could not be located.
// It carries the full query so the message names every constraint that
// failed to match: a missing anchor means the fixed template has
// drifted, and the diagnostic is all the caller gets.
type LookupError struct {
	Query Query
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no fragment found matching %s", e.Query)
}

// AmbiguityError reports that a query expected at most one fragment but
// matched several.
type AmbiguityError struct {
	Query Query
	Count int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("expected a single fragment matching %s, found %d", e.Query, e.Count)
}

func appendBound(parts *[]string, name string, v *float64) {
	if v != nil {
		*parts = append(*parts, name+"="+strconv.FormatFloat(*v, 'f', -1, 64))
	}
}
