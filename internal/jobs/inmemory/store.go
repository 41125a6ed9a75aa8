package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mizanhq/mizan/internal/jobs"
)

// Store keeps job state in memory. Safe for concurrent use; state is
// lost on restart, so it suits single-instance deployments and tests.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.GenerateReportJob
}

// NewStore creates an empty in-memory job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.GenerateReportJob)}
}

// SaveJob saves or updates a job. The stored value is a copy so later
// caller mutations do not leak in.
func (s *Store) SaveJob(ctx context.Context, job *jobs.GenerateReportJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob retrieves a copy of a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.GenerateReportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.GenerateReportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*jobs.GenerateReportJob{}
	for _, job := range s.jobs {
		if filter.UserID != "" && job.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.GenerateReportJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateJobStatus updates a job's status and error message.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	return nil
}

var _ jobs.JobStore = (*Store)(nil)
