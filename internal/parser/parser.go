package parser

import (
	"fmt"
	"strings"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
	"github.com/harborview-tools/statement-extractor/internal/models"
)

// Parser defines the interface for statement template parsers.
type Parser interface {
	// Parse reconstructs a reconciled statement from the positioned
	// fragments of each page.
	Parse(pages []geometry.Page) (*models.Statement, error)
	// BankName returns the human-readable issuer name.
	BankName() string
}

// New returns the parser for the given template.
func New(bankType models.BankType) (Parser, error) {
	switch bankType {
	case models.BankHarborview:
		return &HarborviewParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported bank type: %q", bankType)
	}
}

// Anchor labels every Harborview statement carries on its first page.
// AutoDetect requires all of them before committing to the template; a
// partial match means the layout has drifted and parsing it would only
// fail later with a less helpful error.
var harborviewAnchors = []string{
	"This statement:",
	"Last statement:",
	"Balance Summary",
	"Beginning balance",
	"Ending balance",
}

// AutoDetect identifies the statement template from the first page's
// fragments.
func AutoDetect(pages []geometry.Page) (models.BankType, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("cannot detect statement template: no pages")
	}
	first := pages[0].Fragments
	for _, anchor := range harborviewAnchors {
		if _, ok, err := first.FindOptional(geometry.Query{Text: anchor}); err != nil || !ok {
			return "", fmt.Errorf("statement template not recognized: anchor %q not found on first page", anchor)
		}
	}
	return models.BankHarborview, nil
}

// StructuralError reports a row or checks line whose fragment layout
// matches none of the template's known shapes. It always means the
// fixed-layout assumption broke; coercing the data would silently
// misassign columns.
type StructuralError struct {
	Section string
	Detail  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s section has unexpected structure: %s", e.Section, e.Detail)
}

// ReconciliationError reports that the extracted transactions disagree
// with the statement's printed summary figures. The whole document is
// rejected: for financial data an obvious failure beats silently partial
// correctness.
type ReconciliationError struct {
	Checks []string
}

func (e *ReconciliationError) Error() string {
	return "statement failed reconciliation: " + strings.Join(e.Checks, "; ")
}
