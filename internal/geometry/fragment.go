// Package geometry holds the positioned-fragment store and the query
// engine the statement parser is built on. A page of a fixed-layout PDF
// statement arrives as a flat, unordered collection of text fragments,
// each pinned to an (x, y) position in bottom-left page coordinates
// (Y grows upward). All structure (sections, rows, columns) is
// recovered by querying this collection.
package geometry

import "strings"

// Point is a 2D position in page space. The origin is the bottom-left
// corner of the page, so "above" means a larger Y.
type Point struct {
	X, Y float64
}

// Fragment is one decoded piece of text plus its page position.
// Fragments are immutable once created.
type Fragment struct {
	Position Point
	Text     string
}

// Fragments is an unordered collection of positioned fragments.
// Decode order is preserved for reproducibility but carries no meaning;
// every query treats the collection as a set.
type Fragments []Fragment

// Page is the fragment collection for one statement page.
type Page struct {
	Number    int
	Fragments Fragments
}

// Find returns every fragment matching the query, in decode order.
// An empty result is not an error; callers that require matches use
// FindOne or FindOptional.
func (fs Fragments) Find(q Query) Fragments {
	var out Fragments
	for _, f := range fs {
		if q.matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// FindOne returns the single fragment matching the query. Zero matches
// yield a LookupError, more than one an AmbiguityError.
func (fs Fragments) FindOne(q Query) (Fragment, error) {
	matches := fs.Find(q)
	switch len(matches) {
	case 0:
		return Fragment{}, &LookupError{Query: q}
	case 1:
		return matches[0], nil
	default:
		return Fragment{}, &AmbiguityError{Query: q, Count: len(matches)}
	}
}

// FindOptional returns the single fragment matching the query, or
// ok=false when nothing matches. More than one match is still an
// AmbiguityError: "absent" is an expected outcome, "ambiguous" is a bug
// in the template assumptions.
func (fs Fragments) FindOptional(q Query) (Fragment, bool, error) {
	matches := fs.Find(q)
	switch len(matches) {
	case 0:
		return Fragment{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return Fragment{}, false, &AmbiguityError{Query: q, Count: len(matches)}
	}
}

// Query filters fragments by text and rectangular bounds. Every field is
// optional; an unset bound imposes no constraint. Lower bounds (XMin,
// YMin) are inclusive, upper bounds (XMax, YMax) are exclusive, so
// "at or above the anchor" is YMin and "strictly below the anchor" is
// YMax.
type Query struct {
	// Text, when non-empty, must equal the fragment's whole text,
	// case-insensitively. Substring matches do not count.
	Text string

	XMin, XMax *float64
	YMin, YMax *float64
}

func (q Query) matches(f Fragment) bool {
	if q.Text != "" && !strings.EqualFold(q.Text, f.Text) {
		return false
	}
	if q.XMin != nil && f.Position.X < *q.XMin {
		return false
	}
	if q.XMax != nil && f.Position.X >= *q.XMax {
		return false
	}
	if q.YMin != nil && f.Position.Y < *q.YMin {
		return false
	}
	if q.YMax != nil && f.Position.Y >= *q.YMax {
		return false
	}
	return true
}

// String formats every supplied filter so lookup failures are
// self-describing. Template drift shows up as a missing anchor; the
// message must say exactly what was searched for and where.
func (q Query) String() string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, "text="+q.Text)
	}
	appendBound(&parts, "xMin", q.XMin)
	appendBound(&parts, "xMax", q.XMax)
	appendBound(&parts, "yMin", q.YMin)
	appendBound(&parts, "yMax", q.YMax)
	if len(parts) == 0 {
		return "(unconstrained)"
	}
	return strings.Join(parts, ", ")
}

// Float is a convenience for building queries with optional bounds.
func Float(v float64) *float64 {
	return &v
}
