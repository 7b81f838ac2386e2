package services

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fraudlens/internal/domain/models"
)

// Accepted header spellings, matched case-insensitively, in priority order
var (
	fromColumns   = []string{"fromaccount", "from"}
	toColumns     = []string{"toaccount", "to"}
	amountColumns = []string{"amount", "amt", "value"}
)

var (
	plainNumber  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	nonNumericRe = regexp.MustCompile(`[^\d.-]`)
)

// ParseTransactionTable reads a CSV table with a header row into records.
// Blank lines are skipped. A table that cannot be read at all, such as one
// with inconsistent row lengths or broken quoting, yields a
// *models.TableParseError.
func ParseTransactionTable(r io.Reader) ([]models.TransactionRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.TransactionRecord{}, nil
	}
	if err != nil {
		return nil, &models.TableParseError{Err: err}
	}

	cols := newColumnIndex(header)
	records := make([]models.TransactionRecord, 0)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.TableParseError{Err: err}
		}
		records = append(records, cols.record(row))
	}

	return records, nil
}

// columnIndex resolves logical fields to positions in a header row
type columnIndex struct {
	byName map[string]int
}

func newColumnIndex(header []string) columnIndex {
	idx := columnIndex{byName: make(map[string]int, len(header))}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := idx.byName[key]; !dup {
			idx.byName[key] = i
		}
	}
	return idx
}

// firstNonEmpty returns the first non-blank value among the named columns
func (c columnIndex) firstNonEmpty(row []string, names []string) string {
	for _, name := range names {
		if i, ok := c.byName[name]; ok {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

// amountText prefers a named amount column, even when blank, and falls
// back to the first cell holding a plain number.
func (c columnIndex) amountText(row []string) string {
	for _, name := range amountColumns {
		if i, ok := c.byName[name]; ok {
			return row[i]
		}
	}
	for _, v := range row {
		if plainNumber.MatchString(v) {
			return v
		}
	}
	return ""
}

func (c columnIndex) record(row []string) models.TransactionRecord {
	return models.TransactionRecord{
		From:   c.firstNonEmpty(row, fromColumns),
		To:     c.firstNonEmpty(row, toColumns),
		Amount: parseAmount(c.amountText(row)),
	}
}

// parseAmount keeps digits, '.' and '-' and parses the rest as a decimal.
// Anything unparsable is zero.
func parseAmount(raw string) decimal.Decimal {
	cleaned := nonNumericRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
