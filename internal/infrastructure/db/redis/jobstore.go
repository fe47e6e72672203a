package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

// jobTTL bounds how long a terminal job status stays queryable. Ingestion is
// human-scale batch work; a day of observability is plenty.
const jobTTL = 24 * time.Hour

// JobStore persists ingestion job status in Redis so clients can poll the
// outcome of an acknowledged upload.
// Key format: ingest:job:<job_id>
type JobStore struct {
	client *redis.Client
}

func NewJobStore(client *redis.Client) *JobStore {
	return &JobStore{client: client}
}

func (s *JobStore) Set(ctx context.Context, st ports.JobStatus) error {
	st.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("job status marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(st.JobID), payload, jobTTL).Err(); err != nil {
		return fmt.Errorf("job status set: %w", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, jobID string) (*ports.JobStatus, error) {
	payload, err := s.client.Get(ctx, s.key(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("job status get: %w", err)
	}

	var st ports.JobStatus
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("job status unmarshal: %w", err)
	}
	return &st, nil
}

func (s *JobStore) key(jobID string) string {
	return "ingest:job:" + jobID
}
