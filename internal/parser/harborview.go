package parser

import (
	"fmt"
	"math"
	"time"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
	"github.com/harborview-tools/statement-extractor/internal/models"
)

// HarborviewParser reconstructs Harborview checking statements.
//
// The statement's first page carries a header block
//
//	This statement:  <date>
//	Last statement:  <date>
//
// and a "Balance Summary" table (Beginning balance, Deposits/Credits,
// Withdrawals/Debits, Ending balance, Low balance). Transactions live in
// up to three sections per page: "Checks" (two slots per line),
// "Other Debits", and "Deposits/Other Credits", each introduced by a
// "Transaction Type" column-header line.
//
// Known limitation: a checks subsection split across a page break is not
// reassembled; the lost rows surface as a reconciliation failure, never
// as a partially-correct statement.
type HarborviewParser struct{}

func (p *HarborviewParser) BankName() string {
	return "Harborview Bank"
}

// Balance-summary anchor labels on the first page.
const (
	anchorThisStatement    = "This statement:"
	anchorLastStatement    = "Last statement:"
	anchorBeginningBalance = "Beginning balance"
	anchorCreditsSummary   = "Deposits/Credits"
	anchorDebitsSummary    = "Withdrawals/Debits"
	anchorEndingBalance    = "Ending balance"
	anchorLowBalance       = "Low balance"
)

// lineEpsilon bounds a "same printed line" Y window and nudges inclusive
// bounds past an anchor's own line. Line spacing on the template is an
// order of magnitude larger.
const lineEpsilon = 0.5

// reconcileTolerance is the absolute tolerance for every balance check.
const reconcileTolerance = 0.001

// Parse reconstructs the statement from its pages' positioned fragments.
// The returned statement has passed reconciliation; any extraction or
// validation failure aborts the whole parse.
func (p *HarborviewParser) Parse(pages []geometry.Page) (*models.Statement, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("statement has no pages")
	}
	first := pages[0].Fragments
	if len(first) == 0 {
		return nil, fmt.Errorf("first statement page has no text fragments")
	}

	stmt := &models.Statement{}

	date, err := p.statementDate(first)
	if err != nil {
		return nil, err
	}
	stmt.Date = date

	if err := p.balanceSummary(first, stmt); err != nil {
		return nil, err
	}

	for _, page := range pages {
		txns, err := p.parsePage(page, stmt.Date.Year())
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Number, err)
		}
		stmt.Transactions = append(stmt.Transactions, txns...)
	}

	if err := p.reconcile(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

// statementDate reads the statement date from the header block. The
// date token sits strictly between the "This statement:" and
// "Last statement:" baselines, right of the label column.
func (p *HarborviewParser) statementDate(fs geometry.Fragments) (time.Time, error) {
	thisStmt, err := fs.FindOne(geometry.Query{Text: anchorThisStatement})
	if err != nil {
		return time.Time{}, err
	}
	lastStmt, err := fs.FindOne(geometry.Query{Text: anchorLastStatement})
	if err != nil {
		return time.Time{}, err
	}

	token, err := fs.FindOne(geometry.Query{
		XMin: geometry.Float(thisStmt.Position.X),
		YMin: geometry.Float(lastStmt.Position.Y + lineEpsilon),
		YMax: geometry.Float(thisStmt.Position.Y),
	})
	if err != nil {
		return time.Time{}, err
	}
	return parseStatementDate(token.Text)
}

// balanceSummary reads the four summary figures. Each figure is the
// numeric fragment on its label's line, within the X band between the
// label column and the "Low balance" column. The right-hand stop keeps
// an unrelated figure on the same line from being picked up.
func (p *HarborviewParser) balanceSummary(fs geometry.Fragments, stmt *models.Statement) error {
	lowBalance, err := fs.FindOne(geometry.Query{Text: anchorLowBalance})
	if err != nil {
		return err
	}

	figures := []struct {
		label string
		dest  *float64
	}{
		{anchorBeginningBalance, &stmt.BeginningBalance},
		{anchorCreditsSummary, &stmt.TotalCredits},
		{anchorDebitsSummary, &stmt.TotalDebits},
		{anchorEndingBalance, &stmt.EndingBalance},
	}
	for _, fig := range figures {
		label, err := fs.FindOne(geometry.Query{Text: fig.label})
		if err != nil {
			return err
		}
		cell, err := fs.FindOne(geometry.Query{
			XMin: geometry.Float(label.Position.X + lineEpsilon),
			XMax: geometry.Float(lowBalance.Position.X),
			YMin: geometry.Float(label.Position.Y),
			YMax: geometry.Float(label.Position.Y + lineEpsilon),
		})
		if err != nil {
			return err
		}
		value, err := parseAmount(cell.Text)
		if err != nil {
			return fmt.Errorf("%s: %w", fig.label, err)
		}
		*fig.dest = value
	}
	return nil
}

// parsePage extracts every transaction section present on one page.
func (p *HarborviewParser) parsePage(page geometry.Page, year int) ([]models.Transaction, error) {
	fs := page.Fragments
	var txns []models.Transaction

	if b, ok, err := debitsBand(fs); err != nil {
		return nil, err
	} else if ok {
		rows, err := reconstructRows(fs, b, false, year, "debits")
		if err != nil {
			return nil, err
		}
		txns = append(txns, rows...)
	}

	if b, ok, err := creditsBand(fs); err != nil {
		return nil, err
	} else if ok {
		rows, err := reconstructRows(fs, b, true, year, "credits")
		if err != nil {
			return nil, err
		}
		txns = append(txns, rows...)
	}

	if b, ok, err := checksBand(fs); err != nil {
		return nil, err
	} else if ok {
		checks, err := parseChecks(fs, b, year)
		if err != nil {
			return nil, err
		}
		txns = append(txns, checks...)
	}

	return txns, nil
}

// reconcile cross-validates the extracted transactions against the
// printed summary: the balance identity must hold, and the signed
// transaction sums must match the declared totals. Any failure rejects
// the whole statement.
func (p *HarborviewParser) reconcile(stmt *models.Statement) error {
	var credits, debits float64
	for _, t := range stmt.Transactions {
		if t.Amount >= 0 {
			credits += t.Amount
		} else {
			debits -= t.Amount
		}
	}

	var failures []string
	expectedEnding := stmt.BeginningBalance + stmt.TotalCredits - stmt.TotalDebits
	if math.Abs(stmt.EndingBalance-expectedEnding) >= reconcileTolerance {
		failures = append(failures, fmt.Sprintf(
			"ending balance %.2f does not equal beginning %.2f + credits %.2f - debits %.2f",
			stmt.EndingBalance, stmt.BeginningBalance, stmt.TotalCredits, stmt.TotalDebits))
	}
	if math.Abs(credits-stmt.TotalCredits) >= reconcileTolerance {
		failures = append(failures, fmt.Sprintf(
			"extracted credits %.2f do not match declared %.2f", credits, stmt.TotalCredits))
	}
	if math.Abs(debits-stmt.TotalDebits) >= reconcileTolerance {
		failures = append(failures, fmt.Sprintf(
			"extracted debits %.2f do not match declared %.2f", debits, stmt.TotalDebits))
	}
	if len(failures) > 0 {
		return &ReconciliationError{Checks: failures}
	}
	return nil
}
