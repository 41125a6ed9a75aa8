// Package storage persists uploaded documents and finished reports in
// Google Cloud Storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	gcstorage "cloud.google.com/go/storage"
)

// DocumentStore abstracts the object store so the worker and handlers
// can be tested without GCS.
type DocumentStore interface {
	// FetchDocument downloads the raw bytes of an uploaded document.
	FetchDocument(ctx context.Context, key string) ([]byte, error)

	// SaveDocument stores an uploaded document and returns its object key.
	SaveDocument(ctx context.Context, key string, data []byte) error

	// SaveReport stores a finished report as JSON under the user's prefix
	// and returns the object key.
	SaveReport(ctx context.Context, userID, reportID string, report interface{}) (string, error)

	// FetchReport reads a stored report's JSON bytes.
	FetchReport(ctx context.Context, userID, reportID string) ([]byte, error)
}

// GCSStore implements DocumentStore against a single bucket.
// Application Default Credentials are assumed.
type GCSStore struct {
	client *gcstorage.Client
	bucket string
}

// NewGCSStore opens a storage client for the given bucket.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// FetchDocument downloads an object's bytes.
func (s *GCSStore) FetchDocument(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchDocument: reading object %s/%s: %w", s.bucket, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchDocument: reading bytes: %w", err)
	}
	return data, nil
}

// SaveDocument writes an object, bounded by a per-upload timeout.
func (s *GCSStore) SaveDocument(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("SaveDocument: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SaveDocument: finalize upload: %w", err)
	}
	return nil
}

// SaveReport marshals the report and stores it under
// reports/<userID>/<reportID>.json.
func (s *GCSStore) SaveReport(ctx context.Context, userID, reportID string, report interface{}) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("SaveReport: marshal report: %w", err)
	}

	key := ReportKey(userID, reportID)
	if err := s.SaveDocument(ctx, key, data); err != nil {
		return "", fmt.Errorf("SaveReport: %w", err)
	}
	return key, nil
}

// FetchReport reads a stored report's JSON bytes.
func (s *GCSStore) FetchReport(ctx context.Context, userID, reportID string) ([]byte, error) {
	return s.FetchDocument(ctx, ReportKey(userID, reportID))
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ReportKey builds the object key for a stored report.
func ReportKey(userID, reportID string) string {
	return fmt.Sprintf("reports/%s/%s.json", userID, reportID)
}

// DocumentKey builds the object key for an uploaded document.
func DocumentKey(userID, jobID, filename string) string {
	return fmt.Sprintf("documents/%s/%s/%s", userID, jobID, filename)
}

var _ DocumentStore = (*GCSStore)(nil)
