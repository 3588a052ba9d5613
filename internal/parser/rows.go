package parser

import (
	"fmt"
	"sort"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
	"github.com/harborview-tools/statement-extractor/internal/models"
)

// columnRole names the semantic meaning of one ranked X position within
// a transaction row.
type columnRole int

const (
	colDate columnRole = iota
	colType
	colDescription
	colAmount
)

// rowShapes maps the number of distinct X positions in a row to the
// left-to-right meaning of each position. Column assignment is by rank,
// never by absolute X, because the layout shifts slightly line to line.
// Keying the mapping on the shape keeps an unexpected layout from
// silently misassigning columns: a count outside this table is a
// structural error.
var rowShapes = map[int][]columnRole{
	3: {colDate, colType, colAmount},
	4: {colDate, colType, colDescription, colAmount},
}

// reconstructRows rebuilds the transactions of one section band. Rows
// are delimited by their MM-DD marker fragments: marker Y values sorted
// top-down, with the band's bottom as the final sentinel, and each row
// owns the fragments between consecutive boundaries. areCredits decides
// the sign of every amount in the band; the layout never encodes sign
// textually.
func reconstructRows(fs geometry.Fragments, b band, areCredits bool, year int, section string) ([]models.Transaction, error) {
	inBand := b.fragments(fs)

	var markerYs []float64
	for _, f := range inBand {
		if isRowMarker(f.Text) {
			markerYs = append(markerYs, f.Position.Y)
		}
	}
	if len(markerYs) == 0 {
		return nil, nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(markerYs)))

	boundaries := append(markerYs, b.bottom)

	txns := make([]models.Transaction, 0, len(markerYs))
	for i := 0; i < len(markerYs); i++ {
		top, bottom := boundaries[i], boundaries[i+1]
		var row geometry.Fragments
		for _, f := range inBand {
			if f.Position.Y > bottom && f.Position.Y <= top {
				row = append(row, f)
			}
		}

		txn, err := buildRowTransaction(row, areCredits, year, section)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// buildRowTransaction assigns one row's fragments to columns by X rank
// and produces the transaction.
func buildRowTransaction(row geometry.Fragments, areCredits bool, year int, section string) (models.Transaction, error) {
	byX := make(map[float64]geometry.Fragments)
	for _, f := range row {
		byX[f.Position.X] = append(byX[f.Position.X], f)
	}
	xs := make([]float64, 0, len(byX))
	for x := range byX {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	shape, ok := rowShapes[len(xs)]
	if !ok {
		return models.Transaction{}, &StructuralError{
			Section: section,
			Detail:  fmt.Sprintf("row has %d distinct columns, expected 3 or 4", len(xs)),
		}
	}

	var txn models.Transaction
	for rank, role := range shape {
		cells := byX[xs[rank]]
		switch role {
		case colDate:
			if len(cells) != 1 {
				return models.Transaction{}, &StructuralError{
					Section: section,
					Detail:  fmt.Sprintf("date column holds %d fragments, expected 1", len(cells)),
				}
			}
			date, err := parseMarkerDate(cells[0].Text, year)
			if err != nil {
				return models.Transaction{}, err
			}
			txn.Date = date
		case colType:
			if len(cells) != 1 {
				return models.Transaction{}, &StructuralError{
					Section: section,
					Detail:  fmt.Sprintf("transaction-type column holds %d fragments, expected 1", len(cells)),
				}
			}
			txn.Type = cells[0].Text
		case colDescription:
			// The description column may stack several lines; keep them
			// in reading order, topmost first.
			lines := append(geometry.Fragments(nil), cells...)
			sort.SliceStable(lines, func(i, j int) bool {
				return lines[i].Position.Y > lines[j].Position.Y
			})
			for _, l := range lines {
				txn.Description = append(txn.Description, l.Text)
			}
		case colAmount:
			// The amount is the lone fragment right of the second-to-last
			// column, which holds whether or not a description column is
			// present.
			var amounts geometry.Fragments
			for _, f := range row {
				if f.Position.X > xs[len(xs)-2] {
					amounts = append(amounts, f)
				}
			}
			if len(amounts) != 1 {
				return models.Transaction{}, &StructuralError{
					Section: section,
					Detail:  fmt.Sprintf("amount column holds %d fragments, expected 1", len(amounts)),
				}
			}
			amount, err := parseAmount(amounts[0].Text)
			if err != nil {
				return models.Transaction{}, err
			}
			if !areCredits {
				amount = -amount
			}
			txn.Amount = amount
		}
	}
	return txn, nil
}
