package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harborview-tools/statement-extractor/internal/models"
)

// CSVWriter serializes transactions to CSV, one line per transaction:
// Date, Description, Amount. Description lines are joined with two
// spaces (or replaced by the transaction type when a row carried no
// description), and embedded commas are stripped so downstream tools
// that split naively still line up.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes the transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write([]string{"Date", "Description", "Amount"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, txn := range txns {
		row := []string{
			txn.Date.Format("01/02/2006"),
			strings.ReplaceAll(txn.DisplayDescription(), ",", ""),
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
