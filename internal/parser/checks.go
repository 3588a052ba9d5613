package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
	"github.com/harborview-tools/statement-extractor/internal/models"
)

const checkTransactionType = "Check"

// parseChecks rebuilds the checks subsection. Its layout differs from
// the other sections: each printed line packs up to two
// {number, date, amount} slots side by side, and a trailing asterisk on
// a check number is a footnote marker for out-of-sequence numbering, not
// part of the number. Checks are always debits.
func parseChecks(fs geometry.Fragments, b band, year int) ([]models.Transaction, error) {
	var inBand geometry.Fragments
	for _, f := range b.fragments(fs) {
		// The footnote line itself ("* check out of sequence") starts
		// with an asterisk and is not transaction data.
		if strings.HasPrefix(strings.TrimSpace(f.Text), "*") {
			continue
		}
		inBand = append(inBand, f)
	}

	// Each distinct marker Y is one printed line.
	lineYs := make(map[float64]bool)
	for _, f := range inBand {
		if isRowMarker(f.Text) {
			lineYs[f.Position.Y] = true
		}
	}
	ys := make([]float64, 0, len(lineYs))
	for y := range lineYs {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	var txns []models.Transaction
	for _, y := range ys {
		var line geometry.Fragments
		for _, f := range inBand {
			if f.Position.Y == y {
				line = append(line, f)
			}
		}
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].Position.X < line[j].Position.X
		})

		if len(line) != 3 && len(line) != 6 {
			return nil, &StructuralError{
				Section: "checks",
				Detail:  fmt.Sprintf("line holds %d fragments, expected 3 (one slot) or 6 (two slots)", len(line)),
			}
		}

		left, err := parseCheckSlot(line[:3], year)
		if err != nil {
			return nil, err
		}
		txns = append(txns, left)

		if len(line) == 6 {
			right, err := parseCheckSlot(line[3:], year)
			if err != nil {
				return nil, err
			}
			txns = append(txns, right)
		}
	}
	return txns, nil
}

// parseCheckSlot turns one {number, date, amount} triple into a
// transaction.
func parseCheckSlot(slot geometry.Fragments, year int) (models.Transaction, error) {
	number := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(slot[0].Text), "*"))

	date, err := parseMarkerDate(slot[1].Text, year)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("check %s: %w", number, err)
	}

	amount, err := parseAmount(slot[2].Text)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("check %s: %w", number, err)
	}

	return models.Transaction{
		Date:        date,
		Type:        checkTransactionType,
		Description: []string{"Check #" + number},
		Amount:      -amount,
	}, nil
}
