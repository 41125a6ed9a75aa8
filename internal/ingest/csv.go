// Package ingest turns uploaded documents into normalized transactions.
// Structured files (CSV, JSON) are parsed directly; everything else is
// handed to the Gemini extractor.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mizanhq/mizan/internal/schema"
)

// columnAliases maps the header names we accept to canonical columns.
// Matching is case-insensitive after trimming.
var columnAliases = map[string]string{
	"date":             "date",
	"transaction date": "date",
	"description":      "description",
	"details":          "description",
	"narrative":        "description",
	"amount":           "amount",
	"value":            "amount",
	"currency":         "currency",
	"category":         "category",
	"vendor":           "vendor",
	"payee":            "vendor",
	"merchant":         "vendor",
	"tax":              "tax_amount",
	"tax amount":       "tax_amount",
	"vat":              "tax_amount",
}

// ParseCSV reads a delimited transaction file. The first row must be a
// header containing at least date, description, and amount columns;
// extra columns are ignored.
func ParseCSV(r io.Reader) ([]schema.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: read header: %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}

	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ParseCSV: missing required column %q", required)
		}
	}

	var txs []schema.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: line %d: %w", line, err)
		}

		amountStr := field(record, cols, "amount")
		amount, err := parseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: line %d: invalid amount %q: %w", line, amountStr, err)
		}

		tx := schema.Transaction{
			Date:        field(record, cols, "date"),
			Description: field(record, cols, "description"),
			Amount:      amount,
			Currency:    strings.ToUpper(field(record, cols, "currency")),
			Category:    field(record, cols, "category"),
			Vendor:      field(record, cols, "vendor"),
		}

		if taxStr := field(record, cols, "tax_amount"); taxStr != "" {
			tax, err := parseAmount(taxStr)
			if err != nil {
				return nil, fmt.Errorf("ParseCSV: line %d: invalid tax amount %q: %w", line, taxStr, err)
			}
			tx.TaxAmount = &tax
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseAmount tolerates thousands separators and a leading currency
// sign, which exported spreadsheets often carry.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, "€$£")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	return strconv.ParseFloat(s, 64)
}

// ParseJSON reads a JSON array of transactions in the canonical schema.
func ParseJSON(r io.Reader) ([]schema.Transaction, error) {
	var txs []schema.Transaction
	if err := json.NewDecoder(r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("ParseJSON: decode: %w", err)
	}
	return txs, nil
}
