package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ReportRow records where a finished report lives and how it came out.
// The report body itself is stored in GCS; this table carries the
// metadata used for listing and lookups.
type ReportRow struct {
	ReportID string `bigquery:"report_id"` // REQUIRED
	UserID   string `bigquery:"user_id"`   // REQUIRED
	JobID    string `bigquery:"job_id"`    // NULLABLE

	Currency string `bigquery:"currency"` // REQUIRED
	GCSURI   string `bigquery:"gcs_uri"`  // REQUIRED

	OverallHealth     string  `bigquery:"overall_health"`     // NULLABLE
	ConfidenceScore   float64 `bigquery:"confidence_score"`   // NULLABLE
	TransactionsTotal int64   `bigquery:"transactions_total"` // NULLABLE
	AlertsTotal       int64   `bigquery:"alerts_total"`       // NULLABLE

	GeneratedAt time.Time `bigquery:"generated_at"` // REQUIRED
	CreatedTS   time.Time `bigquery:"created_ts"`   // REQUIRED
}

// InsertReport records a finished report's metadata.
func (repo *Repository) InsertReport(ctx context.Context, row *ReportRow) error {
	inserter := repo.client.Dataset(repo.dataset).Table(reportsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertReport: inserting row: %w", err)
	}
	return nil
}

// ListReportsByUser returns a user's report metadata, newest first.
func (repo *Repository) ListReportsByUser(ctx context.Context, userID string, limit int) ([]*ReportRow, error) {
	if limit <= 0 {
		limit = 50
	}

	q := repo.client.Query(fmt.Sprintf(`
		SELECT
			report_id,
			user_id,
			job_id,
			currency,
			gcs_uri,
			overall_health,
			confidence_score,
			transactions_total,
			alerts_total,
			generated_at,
			created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		ORDER BY generated_at DESC
		LIMIT @limit
	`, repo.dataset, reportsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListReportsByUser: query read: %w", err)
	}

	var rows []*ReportRow
	for {
		var r ReportRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListReportsByUser: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// GetReport fetches one report's metadata, or nil when absent.
func (repo *Repository) GetReport(ctx context.Context, userID, reportID string) (*ReportRow, error) {
	q := repo.client.Query(fmt.Sprintf(`
		SELECT
			report_id,
			user_id,
			job_id,
			currency,
			gcs_uri,
			overall_health,
			confidence_score,
			transactions_total,
			alerts_total,
			generated_at,
			created_ts
		FROM %s.%s
		WHERE user_id = @user_id AND report_id = @report_id
		LIMIT 1
	`, repo.dataset, reportsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "report_id", Value: reportID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetReport: query read: %w", err)
	}

	var r ReportRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetReport: iter next: %w", err)
	}
	return &r, nil
}
