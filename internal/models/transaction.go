package models

import (
	"strings"
	"time"
)

// Transaction is a single reconstructed statement transaction.
// Amount is signed: debits (including checks) are negative, credits
// positive. Description holds the free-text column lines in top-to-bottom
// reading order, or nil when the row carries none.
type Transaction struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Description []string  `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
}

// DisplayDescription returns the description lines joined with two
// spaces, falling back to the transaction type when the row had no
// description column.
func (t Transaction) DisplayDescription() string {
	if len(t.Description) == 0 {
		return t.Type
	}
	return strings.Join(t.Description, "  ")
}

// Statement is the fully reconstructed and reconciled statement for one
// input document. It is only returned after the balance identity and the
// transaction-sum checks pass; a statement that fails reconciliation is
// never constructed.
type Statement struct {
	Date         time.Time     `json:"date"`
	Transactions []Transaction `json:"transactions"`

	BeginningBalance float64 `json:"beginningBalance"`
	TotalCredits     float64 `json:"totalCredits"`
	TotalDebits      float64 `json:"totalDebits"`
	EndingBalance    float64 `json:"endingBalance"`
}

// BankType identifies a supported statement template.
type BankType string

// BankHarborview is the only supported template. The parser is
// deliberately hard-coded to this issuer's fixed layout and fails loudly
// on anything else.
const BankHarborview BankType = "harborview"
