package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mizanhq/mizan/internal/schema"
)

// TransactionExtractor extracts transactions from unstructured document
// bytes. Satisfied by *Extractor; tests substitute a stub.
type TransactionExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) ([]schema.Transaction, error)
}

// Parser routes a document to the right decoder by MIME type.
type Parser struct {
	extractor TransactionExtractor
}

// NewParser wires the parser. extractor may be nil when only structured
// formats are needed.
func NewParser(extractor TransactionExtractor) *Parser {
	return &Parser{extractor: extractor}
}

// Parse decodes document bytes into transactions. CSV and JSON are
// handled locally; other formats (PDF, images) go to the extractor.
func (p *Parser) Parse(ctx context.Context, data []byte, mimeType string) ([]schema.Transaction, error) {
	switch {
	case strings.HasPrefix(mimeType, "text/csv"), strings.HasPrefix(mimeType, "application/csv"):
		return ParseCSV(bytes.NewReader(data))
	case strings.HasPrefix(mimeType, "application/json"):
		return ParseJSON(bytes.NewReader(data))
	default:
		if p.extractor == nil {
			return nil, fmt.Errorf("Parse: no extractor configured for mime type %q", mimeType)
		}
		return p.extractor.Extract(ctx, data, mimeType)
	}
}
