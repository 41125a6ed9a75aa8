package schema

import (
	"encoding/json"
	"testing"
)

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"complete", Job{JobID: "j1", S3Key: "uploads/a.pdf", UserID: "u1"}, false},
		{"missing jobId", Job{S3Key: "uploads/a.pdf", UserID: "u1"}, true},
		{"missing s3Key", Job{JobID: "j1", UserID: "u1"}, true},
		{"missing userId", Job{JobID: "j1", S3Key: "uploads/a.pdf"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.job.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Job{JobID: "j1", S3Key: "k", Mime: "application/pdf", OriginalName: "a.pdf", UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"jobId", "s3Key", "mime", "originalName", "userId", "createdAt"} {
		if _, ok := m[field]; !ok {
			t.Errorf("serialized job missing %q: %s", field, data)
		}
	}
}

func TestTransactionToReport(t *testing.T) {
	tests := []struct {
		name         string
		tx           Transaction
		wantCurrency string
		wantDateKey  string
	}{
		{
			name:         "currency defaults to EUR",
			tx:           Transaction{Date: "2024-01-05", Description: "Payment", Amount: 100},
			wantCurrency: "EUR",
			wantDateKey:  "2024-01-05",
		},
		{
			name:         "explicit currency kept",
			tx:           Transaction{Date: "2024-01-05", Description: "Payment", Amount: 100, Currency: "USD"},
			wantCurrency: "USD",
			wantDateKey:  "2024-01-05",
		},
		{
			name:         "day-first date",
			tx:           Transaction{Date: "05/01/2024", Description: "Payment", Amount: 100},
			wantCurrency: "EUR",
			wantDateKey:  "2024-01-05",
		},
		{
			name:         "missing date buckets unknown",
			tx:           Transaction{Description: "Payment", Amount: 100},
			wantCurrency: "EUR",
			wantDateKey:  "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tx.ToReport()
			if got.Currency != tt.wantCurrency {
				t.Errorf("Currency = %q, want %q", got.Currency, tt.wantCurrency)
			}
			key := "unknown"
			if !got.Date.IsZero() {
				key = got.Date.Format("2006-01-02")
			}
			if key != tt.wantDateKey {
				t.Errorf("date = %q, want %q", key, tt.wantDateKey)
			}
		})
	}
}

func TestToReportTransactions(t *testing.T) {
	wire := []Transaction{
		{Date: "2024-01-05", Description: "Payment", Amount: 100},
		{Date: "not a date", Description: "Broken", Amount: 50},
		{Description: "", Amount: 10},
	}

	out, dropped := ToReportTransactions(wire)
	if len(out) != 1 {
		t.Errorf("got %d converted transactions, want 1", len(out))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}
