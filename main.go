package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harborview-tools/statement-extractor/internal/api"
	"github.com/harborview-tools/statement-extractor/internal/extractor"
	"github.com/harborview-tools/statement-extractor/internal/models"
	"github.com/harborview-tools/statement-extractor/internal/parser"
	"github.com/harborview-tools/statement-extractor/internal/writer"
)

const version = "1.0.0"

func main() {
	outputFlag := flag.String("output", "", "Output CSV file path (defaults to first input filename with .csv extension)")
	headerFlag := flag.Bool("header", true, "Include the Date,Description,Amount header line")
	serveFlag := flag.String("serve", "", "Run the HTTP conversion API on this address (e.g. :8080) instead of converting files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Harborview Statement Extractor

Reconstructs transactions from Harborview checking-statement PDFs by
geometric layout analysis and writes them as CSV, cross-checked against
the statement's printed balance summary.

Usage:
  statement-extractor [flags] <input.pdf> [input2.pdf ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert one statement
  statement-extractor statement.pdf

  # Merge several months into one CSV, ordered by date
  statement-extractor --output=all.csv jan.pdf feb.pdf mar.pdf

  # Run the HTTP API
  statement-extractor --serve=:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	if *serveFlag != "" {
		app := api.NewApp()
		fmt.Printf("Listening on %s\n", *serveFlag)
		if err := app.Listen(*serveFlag); err != nil {
			fatalf("Server failed: %v\n", err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	inputFiles := flag.Args()

	// One document failing rejects the whole batch: a partially merged
	// CSV would be indistinguishable from a complete one.
	var all []models.Transaction
	for _, inputPath := range inputFiles {
		txns, err := processFile(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
		all = append(all, txns...)
	}

	// Date-ascending output; ties keep per-statement discovery order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.Before(all[j].Date)
	})

	outPath := *outputFlag
	if outPath == "" {
		base := strings.TrimSuffix(inputFiles[0], filepath.Ext(inputFiles[0]))
		outPath = base + ".csv"
	}

	w := &writer.CSVWriter{IncludeHeader: *headerFlag}
	if err := w.WriteToFile(outPath, all); err != nil {
		fatalf("CSV write failed: %v\n", err)
	}

	fmt.Printf("Wrote %d transaction(s) to %s\n", len(all), outPath)
}

func processFile(inputPath string) ([]models.Transaction, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return nil, fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	pages, err := extractor.ExtractFragments(inputPath)
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}
	fmt.Printf("  Extracted fragments from %d page(s)\n", len(pages))

	bankType, err := parser.AutoDetect(pages)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(bankType)
	if err != nil {
		return nil, err
	}
	fmt.Printf("  Using %s parser\n", p.BankName())

	stmt, err := p.Parse(pages)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}

	fmt.Printf("  Statement date %s: %d transaction(s), reconciled\n",
		stmt.Date.Format("2006-01-02"), len(stmt.Transactions))

	return stmt.Transactions, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
