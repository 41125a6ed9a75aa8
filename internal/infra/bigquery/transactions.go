package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/mizanhq/mizan/internal/schema"
)

// TransactionRow is one normalized transaction in the transactions
// table, keyed to the job that extracted it.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	UserID string `bigquery:"user_id"` // REQUIRED
	JobID  string `bigquery:"job_id"`  // NULLABLE

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"` // NULLABLE

	Description string              `bigquery:"description"` // REQUIRED
	Vendor      bigquery.NullString `bigquery:"vendor"`      // NULLABLE

	Amount   float64 `bigquery:"amount"`   // REQUIRED
	Currency string  `bigquery:"currency"` // REQUIRED

	Category  bigquery.NullString  `bigquery:"category"`   // NULLABLE
	TaxAmount bigquery.NullFloat64 `bigquery:"tax_amount"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// TransactionRowFromSchema maps a wire transaction into a table row.
func TransactionRowFromSchema(tx schema.Transaction, userID, jobID string) *TransactionRow {
	row := &TransactionRow{
		TransactionID: tx.ID,
		UserID:        userID,
		JobID:         jobID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		CreatedTS:     time.Now(),
	}
	if row.TransactionID == "" {
		row.TransactionID = uuid.New().String()
	}
	if row.Currency == "" {
		row.Currency = schema.DefaultCurrency
	}
	if tx.Vendor != "" {
		row.Vendor = bigquery.NullString{StringVal: tx.Vendor, Valid: true}
	}
	if tx.Category != "" {
		row.Category = bigquery.NullString{StringVal: tx.Category, Valid: true}
	}
	if tx.TaxAmount != nil {
		row.TaxAmount = bigquery.NullFloat64{Float64: *tx.TaxAmount, Valid: true}
	}
	if tx.Date != "" {
		if parsed, err := time.Parse(dateFormat, tx.Date); err == nil {
			row.TransactionDate = bigquery.NullDate{Date: civil.DateOf(parsed), Valid: true}
		}
	}
	return row
}

// ToSchema maps a table row back onto the wire shape.
func (r *TransactionRow) ToSchema() schema.Transaction {
	tx := schema.Transaction{
		ID:          r.TransactionID,
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
	}
	if r.TransactionDate.Valid {
		tx.Date = r.TransactionDate.Date.String()
	}
	if r.Vendor.Valid {
		tx.Vendor = r.Vendor.StringVal
	}
	if r.Category.Valid {
		tx.Category = r.Category.StringVal
	}
	if r.TaxAmount.Valid {
		tax := r.TaxAmount.Float64
		tx.TaxAmount = &tax
	}
	return tx
}

// InsertTransactions inserts a batch of rows.
func (repo *Repository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := repo.client.Dataset(repo.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// ListTransactionsByUser returns a user's transactions in a date range,
// oldest first. Undated transactions are included regardless of range.
func (repo *Repository) ListTransactionsByUser(ctx context.Context, userID string, startDate, endDate time.Time) ([]*TransactionRow, error) {
	q := repo.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			job_id,
			transaction_date,
			description,
			vendor,
			amount,
			currency,
			category,
			tax_amount,
			created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND (transaction_date IS NULL
		       OR (transaction_date >= @start_date AND transaction_date <= @end_date))
		ORDER BY transaction_date, created_ts
	`, repo.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByUser: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByUser: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
