package api

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/harborview-tools/statement-extractor/internal/extractor"
	"github.com/harborview-tools/statement-extractor/internal/models"
	"github.com/harborview-tools/statement-extractor/internal/parser"
	"github.com/harborview-tools/statement-extractor/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success          bool                 `json:"success"`
	Error            string               `json:"error,omitempty"`
	Bank             string               `json:"bank,omitempty"`
	StatementDate    string               `json:"statementDate,omitempty"`
	Transactions     []models.Transaction `json:"transactions"`
	CSV              string               `json:"csv,omitempty"`
	BeginningBalance float64              `json:"beginningBalance"`
	TotalCredits     float64              `json:"totalCredits"`
	TotalDebits      float64              `json:"totalDebits"`
	EndingBalance    float64              `json:"endingBalance"`
	Count            int                  `json:"count"`
}

// NewApp builds the fiber application with all routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20,
	})
	app.Get("/api/health", HandleHealth)
	app.Post("/api/convert", HandleConvert)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// HandleConvert accepts a statement PDF upload (multipart field "file"),
// reconstructs the statement, and returns the transactions plus their
// CSV rendering. A statement that fails reconciliation is rejected
// whole; no partial data is ever returned.
func HandleConvert(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	pages, err := extractor.ExtractFragments(tmpPath)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}

	bankType, err := parser.AutoDetect(pages)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	p, err := parser.New(bankType)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	stmt, err := p.Parse(pages)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	includeHeader := c.FormValue("header") != "false"
	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := csvWriter.Write(&csvBuf, stmt.Transactions); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	// nil marshals to JSON null, not []
	txns := stmt.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	return c.JSON(ConvertResponse{
		Success:          true,
		Bank:             string(bankType),
		StatementDate:    stmt.Date.Format("2006-01-02"),
		Transactions:     txns,
		CSV:              csvBuf.String(),
		BeginningBalance: stmt.BeginningBalance,
		TotalCredits:     stmt.TotalCredits,
		TotalDebits:      stmt.TotalDebits,
		EndingBalance:    stmt.EndingBalance,
		Count:            len(txns),
	})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
