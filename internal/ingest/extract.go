package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mizanhq/mizan/internal/schema"
)

// extractionPrompt instructs the model to return a strict JSON array of
// transactions in our canonical shape.
const extractionPrompt = "You are a financial document parser for invoices, receipts, and bank statements.\n\n" +
	"Task:\n" +
	"- Extract ALL transactions from the attached document.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a JSON array of objects.\n\n" +
	"Each object must have these fields:\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
	"- \"description\": string\n" +
	"- \"amount\": number (positive for money IN, negative for money OUT)\n" +
	"- \"currency\": string (e.g. \"EUR\"), or null if not shown\n" +
	"- \"category\": string, a short expense or income category, or null\n" +
	"- \"vendor\": string, the counterparty name, or null\n" +
	"- \"taxAmount\": number, the VAT or tax portion if itemized, or null\n\n" +
	"Rules:\n" +
	"- If the document has separate debit/credit columns, convert to a single signed \"amount\".\n" +
	"- If the document is bilingual, use the Latin-script description when both are given.\n" +
	"- Return ONLY valid raw JSON.\n" +
	"- Do NOT wrap the response in code fences.\n" +
	"- Output must begin with \"[\" and end with \"]\".\n"

// Extractor parses unstructured documents with Gemini.
type Extractor struct {
	client *genai.Client
	model  string
}

// NewExtractor creates a Gemini-backed extractor. The API key may be
// empty, in which case the client reads it from the environment.
func NewExtractor(ctx context.Context, apiKey, model string) (*Extractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewExtractor: create genai client: %w", err)
	}
	return &Extractor{client: client, model: model}, nil
}

// Extract sends the document to the model and returns the transactions
// it found.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) ([]schema.Transaction, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Extract: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Extract: empty response from model")
	}

	txs, err := decodeModelOutput(cleanModelJSON(rawText))
	if err != nil {
		return nil, fmt.Errorf("Extract: %w\nraw response: %s", err, rawText)
	}
	return txs, nil
}

// decodeModelOutput converts the model's JSON array into transactions,
// validating field types element by element so a bad row names itself.
func decodeModelOutput(clean string) ([]schema.Transaction, error) {
	var parsed []interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	result := make([]schema.Transaction, 0, len(parsed))
	for i, item := range parsed {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("element %d is %T, want object", i, item)
		}

		date, err := getStringField(obj, "date", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		amount, err := getFloat64Field(obj, "amount", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		currency, err := getOptionalStringField(obj, "currency")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		category, err := getOptionalStringField(obj, "category")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		vendor, err := getOptionalStringField(obj, "vendor")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		taxAmount, err := getOptionalFloat64Field(obj, "taxAmount")
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		tx := schema.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			TaxAmount:   taxAmount,
		}
		if currency != nil {
			tx.Currency = strings.ToUpper(*currency)
		}
		if category != nil {
			tx.Category = *category
		}
		if vendor != nil {
			tx.Vendor = *vendor
		}

		result = append(result, tx)
	}

	return result, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the
// model ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getOptionalFloat64Field(m map[string]interface{}, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		f := val
		return &f, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want number or null", key, v)
	}
}
