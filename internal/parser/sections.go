package parser

import (
	"github.com/harborview-tools/statement-extractor/internal/geometry"
)

// Anchor labels that delimit the transaction sections on a page.
const (
	anchorOtherDebits     = "Other Debits"
	anchorOtherCredits    = "Deposits/Other Credits"
	anchorBalanceSummary  = "Balance Summary"
	anchorTransactionType = "Transaction Type"
	anchorChecks          = "Checks"
	anchorAmount          = "Amount"
)

// checksBandEpsilon lifts the checks band's bottom just above the
// "Other Debits" label line so the label's own fragments stay out of the
// band. Check rows sit several points higher.
const checksBandEpsilon = 0.5

// band is the Y interval a section's transaction rows live in. Both
// edges are exclusive: top is the Y of the section's column-header line
// and bottom the Y of the anchor that starts the next section, and
// neither line belongs to the rows.
type band struct {
	top    float64
	bottom float64
}

func (b band) contains(y float64) bool {
	return y > b.bottom && y < b.top
}

// fragments returns the subset of fs inside the band, in decode order.
func (b band) fragments(fs geometry.Fragments) geometry.Fragments {
	var out geometry.Fragments
	for _, f := range fs {
		if b.contains(f.Position.Y) {
			out = append(out, f)
		}
	}
	return out
}

// debitsBand locates the "Other Debits" section on a page. ok=false
// means the page has no debits section, which is legitimate (a statement
// period can have no debits). Once the section heading is present, every
// other anchor is required.
func debitsBand(fs geometry.Fragments) (band, bool, error) {
	heading, ok, err := fs.FindOptional(geometry.Query{Text: anchorOtherDebits})
	if err != nil || !ok {
		return band{}, false, err
	}

	// The section runs down to the credits section heading, or to the
	// balance summary when the statement has no credits section.
	bottom, ok, err := fs.FindOptional(geometry.Query{
		Text: anchorOtherCredits,
		YMax: geometry.Float(heading.Position.Y),
	})
	if err != nil {
		return band{}, false, err
	}
	if !ok {
		bottom, err = fs.FindOne(geometry.Query{
			Text: anchorBalanceSummary,
			YMax: geometry.Float(heading.Position.Y),
		})
		if err != nil {
			return band{}, false, err
		}
	}

	header, err := fs.FindOne(geometry.Query{
		Text: anchorTransactionType,
		YMin: geometry.Float(bottom.Position.Y),
		YMax: geometry.Float(heading.Position.Y),
	})
	if err != nil {
		return band{}, false, err
	}

	return band{top: header.Position.Y, bottom: bottom.Position.Y}, true, nil
}

// creditsBand locates the "Deposits/Other Credits" section, bounded
// below by the balance summary.
func creditsBand(fs geometry.Fragments) (band, bool, error) {
	heading, ok, err := fs.FindOptional(geometry.Query{Text: anchorOtherCredits})
	if err != nil || !ok {
		return band{}, false, err
	}

	bottom, err := fs.FindOne(geometry.Query{
		Text: anchorBalanceSummary,
		YMax: geometry.Float(heading.Position.Y),
	})
	if err != nil {
		return band{}, false, err
	}

	header, err := fs.FindOne(geometry.Query{
		Text: anchorTransactionType,
		YMin: geometry.Float(bottom.Position.Y),
		YMax: geometry.Float(heading.Position.Y),
	})
	if err != nil {
		return band{}, false, err
	}

	return band{top: header.Position.Y, bottom: bottom.Position.Y}, true, nil
}

// checksBand locates the "Checks" subsection. It sits above the
// "Other Debits" section, under its own "Amount" column headers. The
// heading is optional; once present, "Other Debits" and the "Amount"
// headers are required.
func checksBand(fs geometry.Fragments) (band, bool, error) {
	heading, ok, err := fs.FindOptional(geometry.Query{Text: anchorChecks})
	if err != nil || !ok {
		return band{}, false, err
	}

	debitsHeading, err := fs.FindOne(geometry.Query{Text: anchorOtherDebits})
	if err != nil {
		return band{}, false, err
	}
	bottom := debitsHeading.Position.Y + checksBandEpsilon

	// Two "Amount" headers, one per slot column, share the header line.
	headerQuery := geometry.Query{
		Text: anchorAmount,
		YMin: geometry.Float(bottom),
		YMax: geometry.Float(heading.Position.Y),
	}
	headers := fs.Find(headerQuery)
	if len(headers) == 0 {
		return band{}, false, &geometry.LookupError{Query: headerQuery}
	}
	top := headers[0].Position.Y
	for _, h := range headers[1:] {
		if h.Position.Y > top {
			top = h.Position.Y
		}
	}

	return band{top: top, bottom: bottom}, true, nil
}
