package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rowMarkerPattern matches the short MM-DD date stamp printed once per
// transaction row. Row heights vary, so these stamps are the only
// reliable row delimiters.
var rowMarkerPattern = regexp.MustCompile(`^\d{2}-\d{2}$`)

func isRowMarker(text string) bool {
	return rowMarkerPattern.MatchString(strings.TrimSpace(text))
}

// parseAmount converts a string like "1,234.56" or "$1,234.56" to a
// float64. The statement never encodes sign textually; callers assign it.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "") // non-breaking space

	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// parseMarkerDate combines an MM-DD row marker with the statement year.
func parseMarkerDate(marker string, year int) (time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(marker), "-", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid row date stamp %q", marker)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in row date stamp %q", marker)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in row date stamp %q", marker)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Date shapes the issuer has been observed printing for the statement
// date, tried in order.
var statementDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"01/02/06",
}

func parseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range statementDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized statement date %q", s)
}
