// Package bigquery persists transactions and report metadata in
// BigQuery for cross-report queries and history.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

const (
	transactionsTable = "transactions"
	reportsTable      = "reports"
	dateFormat        = "2006-01-02"
)

// Repository wraps a BigQuery client scoped to one project and dataset.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository opens a BigQuery client. Application Default
// Credentials are assumed.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// NewRepositoryWithClient wires an existing client, used in tests.
func NewRepositoryWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}
