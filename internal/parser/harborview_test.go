package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
)

// statementPage builds the fragments of a complete single-page
// Harborview statement: one card-purchase debit, two checks, no
// credits. Declared summary: 2,000.00 beginning, 0.00 credits, 82.36
// debits, 1,917.64 ending.
func statementPage() geometry.Page {
	return geometry.Page{Number: 1, Fragments: geometry.Fragments{
		// Header block
		frag(400, 755, "This statement:"),
		frag(480, 750, "July 5, 2017"),
		frag(400, 748, "Last statement:"),
		frag(480, 748, "June 5, 2017"),

		// Checks subsection (two slots per line)
		frag(50, 640, "Checks"),
		frag(50, 630, "Number"),
		frag(100, 630, "Date"),
		frag(150, 630, "Amount"),
		frag(300, 630, "Number"),
		frag(350, 630, "Date"),
		frag(400, 630, "Amount"),
		frag(50, 615, "1051 *"),
		frag(100, 615, "07-03"),
		frag(150, 615, "25.00"),
		frag(300, 615, "1052"),
		frag(350, 615, "07-05"),
		frag(400, 615, "40.00"),
		frag(50, 605, "* check out of sequence"),

		// Other Debits section
		frag(50, 600, "Other Debits"),
		frag(50, 588, "Date"),
		frag(110, 588, "Transaction Type"),
		frag(200, 588, "Description"),
		frag(400, 588, "Amount"),
		frag(50, 570, "07-02"),
		frag(110, 570, "Check Card Purchase"),
		frag(200, 570, "Merchant X"),
		frag(400, 570, "17.36"),

		// Credits section (empty this period)
		frag(50, 540, "Deposits/Other Credits"),
		frag(50, 528, "Date"),
		frag(110, 528, "Transaction Type"),
		frag(400, 528, "Amount"),

		// Balance summary
		frag(50, 500, "Balance Summary"),
		frag(300, 490, "Low balance"),
		frag(50, 480, "Beginning balance"),
		frag(150, 480, "2,000.00"),
		frag(310, 480, "1,900.00"), // low-balance figure, right of the stop column
		frag(50, 468, "Deposits/Credits"),
		frag(150, 468, "0.00"),
		frag(50, 456, "Withdrawals/Debits"),
		frag(150, 456, "82.36"),
		frag(50, 444, "Ending balance"),
		frag(150, 444, "1,917.64"),
	}}
}

// editFragment returns a copy of the page with the first fragment whose
// text equals from replaced by to.
func editFragment(page geometry.Page, from, to string) geometry.Page {
	frags := make(geometry.Fragments, len(page.Fragments))
	copy(frags, page.Fragments)
	for i, f := range frags {
		if f.Text == from {
			f.Text = to
			frags[i] = f
			break
		}
	}
	return geometry.Page{Number: page.Number, Fragments: frags}
}

func TestHarborviewParseSinglePage(t *testing.T) {
	p := &HarborviewParser{}

	stmt, err := p.Parse([]geometry.Page{statementPage()})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2017, time.July, 5, 0, 0, 0, 0, time.UTC), stmt.Date)
	assert.Equal(t, 2000.00, stmt.BeginningBalance)
	assert.Equal(t, 0.00, stmt.TotalCredits)
	assert.Equal(t, 82.36, stmt.TotalDebits)
	assert.Equal(t, 1917.64, stmt.EndingBalance)

	require.Len(t, stmt.Transactions, 3)

	debit := stmt.Transactions[0]
	assert.Equal(t, time.Date(2017, time.July, 2, 0, 0, 0, 0, time.UTC), debit.Date)
	assert.Equal(t, "Check Card Purchase", debit.Type)
	assert.Equal(t, []string{"Merchant X"}, debit.Description)
	assert.Equal(t, -17.36, debit.Amount)

	assert.Equal(t, []string{"Check #1051"}, stmt.Transactions[1].Description)
	assert.Equal(t, -25.00, stmt.Transactions[1].Amount)
	assert.Equal(t, []string{"Check #1052"}, stmt.Transactions[2].Description)
	assert.Equal(t, -40.00, stmt.Transactions[2].Amount)

	// Sign invariant: nothing here came from a credits band
	for _, txn := range stmt.Transactions {
		assert.Negative(t, txn.Amount)
	}
}

func TestHarborviewParseWithoutChecksSection(t *testing.T) {
	// Statement with a single debit and no checks subsection.
	var frags geometry.Fragments
	for _, f := range statementPage().Fragments {
		if f.Position.Y >= 605 && f.Position.Y <= 640 {
			continue
		}
		frags = append(frags, f)
	}
	page := geometry.Page{Number: 1, Fragments: frags}
	page = editFragment(page, "82.36", "17.36")
	page = editFragment(page, "1,917.64", "1,982.64")

	p := &HarborviewParser{}
	stmt, err := p.Parse([]geometry.Page{page})
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 1)
	txn := stmt.Transactions[0]
	assert.Equal(t, time.Date(2017, time.July, 2, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "Check Card Purchase", txn.Type)
	assert.Equal(t, []string{"Merchant X"}, txn.Description)
	assert.Equal(t, -17.36, txn.Amount)
	assert.Equal(t, 1982.64, stmt.EndingBalance)
}

func TestHarborviewParseIsIdempotent(t *testing.T) {
	p := &HarborviewParser{}
	pages := []geometry.Page{statementPage()}

	first, err := p.Parse(pages)
	require.NoError(t, err)
	second, err := p.Parse(pages)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHarborviewParseMultiPage(t *testing.T) {
	// Page 1 has no credits section, so the debits band's bottom falls
	// back to the "Balance Summary" anchor. Page 2 carries the credits.
	page1 := statementPage()
	var frags geometry.Fragments
	for _, f := range page1.Fragments {
		if f.Text == "Deposits/Other Credits" || f.Position.Y == 528 {
			continue
		}
		frags = append(frags, f)
	}
	page1 = geometry.Page{Number: 1, Fragments: frags}
	page1 = editFragment(page1, "0.00", "250.00")      // declared credits
	page1 = editFragment(page1, "1,917.64", "2,167.64") // ending balance

	page2 := geometry.Page{Number: 2, Fragments: geometry.Fragments{
		frag(50, 600, "Deposits/Other Credits"),
		frag(50, 588, "Date"),
		frag(110, 588, "Transaction Type"),
		frag(400, 588, "Amount"),
		frag(50, 570, "07-10"),
		frag(110, 570, "Deposit"),
		frag(400, 570, "250.00"),
		frag(50, 540, "Balance Summary"),
	}}

	p := &HarborviewParser{}
	stmt, err := p.Parse([]geometry.Page{page1, page2})
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 4)

	deposit := stmt.Transactions[3]
	assert.Equal(t, time.Date(2017, time.July, 10, 0, 0, 0, 0, time.UTC), deposit.Date)
	assert.Equal(t, "Deposit", deposit.Type)
	assert.Nil(t, deposit.Description)
	assert.Equal(t, 250.00, deposit.Amount, "credits band amounts stay positive")
}

func TestHarborviewParseMissingAnchorFails(t *testing.T) {
	// A renamed summary anchor must surface as a lookup failure, never
	// as a miscomputed statement.
	page := editFragment(statementPage(), "Ending balance", "Closing balance")

	p := &HarborviewParser{}
	_, err := p.Parse([]geometry.Page{page})

	var lookupErr *geometry.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Contains(t, err.Error(), "Ending balance")
}

func TestHarborviewParseReconciliationFailure(t *testing.T) {
	p := &HarborviewParser{}

	t.Run("transaction sum disagrees with declared totals", func(t *testing.T) {
		// Identity still holds, but the extracted debits no longer sum
		// to the declared figure.
		page := editFragment(statementPage(), "17.36", "27.36")

		_, err := p.Parse([]geometry.Page{page})
		var recErr *ReconciliationError
		require.ErrorAs(t, err, &recErr)
	})

	t.Run("balance identity fails", func(t *testing.T) {
		page := editFragment(statementPage(), "1,917.64", "1,917.00")

		_, err := p.Parse([]geometry.Page{page})
		var recErr *ReconciliationError
		require.ErrorAs(t, err, &recErr)
	})

	t.Run("within tolerance passes", func(t *testing.T) {
		_, err := p.Parse([]geometry.Page{statementPage()})
		require.NoError(t, err)
	})
}

func TestHarborviewParsePreconditions(t *testing.T) {
	p := &HarborviewParser{}

	_, err := p.Parse(nil)
	assert.Error(t, err)

	_, err = p.Parse([]geometry.Page{{Number: 1}})
	assert.Error(t, err)
}

func TestAutoDetect(t *testing.T) {
	bank, err := AutoDetect([]geometry.Page{statementPage()})
	require.NoError(t, err)
	assert.Equal(t, "harborview", string(bank))

	_, err = AutoDetect([]geometry.Page{{Number: 1, Fragments: geometry.Fragments{
		frag(50, 700, "Some Other Bank"),
		frag(50, 680, "Account Statement"),
	}}})
	assert.Error(t, err)

	_, err = AutoDetect(nil)
	assert.Error(t, err)
}

func TestParserNew(t *testing.T) {
	p, err := New("harborview")
	require.NoError(t, err)
	assert.Equal(t, "Harborview Bank", p.BankName())

	_, err = New("metro")
	assert.Error(t, err)
}
