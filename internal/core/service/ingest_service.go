package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medidata/dataset-system/internal/api/metrics"
	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
	"github.com/medidata/dataset-system/internal/ingest"
)

// IngestService runs the dataset ingestion pipeline for jobs accepted by the
// upload endpoint: clean the raw file, persist the dataset row, parse the
// cleaned rows, and insert entries one by one. Each state transition is
// written to the job store so clients can poll progress after the 202
// acknowledgment.
type IngestService struct {
	repo     ports.DatasetRepository
	jobs     ports.JobStore
	activity ports.ActivityLogger
	cleaner  *ingest.Cleaner
	log      zerolog.Logger
}

func NewIngestService(
	repo ports.DatasetRepository,
	jobs ports.JobStore,
	activity ports.ActivityLogger,
	log zerolog.Logger,
) *IngestService {
	return &IngestService{
		repo:     repo,
		jobs:     jobs,
		activity: activity,
		cleaner:  ingest.NewCleaner(log),
		log:      log,
	}
}

// Process runs one job to its terminal state. Fatal pipeline errors (cleaning
// failure, unreadable file) mark the job failed and are returned for the
// worker to log; individual row insertion failures are collected and do not
// abort the remaining rows.
func (s *IngestService) Process(ctx context.Context, job ports.IngestJob) error {
	start := time.Now()
	err := s.run(ctx, job)
	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	metrics.IngestJobsTotal.WithLabelValues(outcome).Inc()
	metrics.IngestJobDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return err
}

func (s *IngestService) run(ctx context.Context, job ports.IngestJob) error {
	s.setState(ctx, job, ports.JobCleaning, "", 0, 0, "")

	cleanedPath := job.FilePath + ".cleaned"
	if _, err := s.cleaner.StandardizeAndFilter(job.FilePath, cleanedPath, ingest.DefaultDelimiter); err != nil {
		return s.fail(ctx, job, fmt.Errorf("clean file: %w", err))
	}

	s.setState(ctx, job, ports.JobPersistingMetadata, "", 0, 0, "")

	dataset := &domain.Dataset{
		Name:        job.Name,
		Description: job.Description,
		Type:        job.DatasetType,
		FilePath:    job.FilePath,
		UploadedBy:  job.UploadedBy,
	}
	if err := s.repo.Create(ctx, dataset); err != nil {
		return s.fail(ctx, job, fmt.Errorf("persist dataset: %w", err))
	}

	s.activity.LogDatasetUsage(ctx, dataset.ID, domain.UsageUpload, "", job.UploadedBy)

	s.setState(ctx, job, ports.JobParsing, dataset.ID, 0, 0, "")

	records, err := s.parseCleaned(cleanedPath, job.DatasetType)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	s.setState(ctx, job, ports.JobPersistingEntries, dataset.ID, 0, 0, "")

	inserted, failed := 0, 0
	for i, record := range records {
		entry := &domain.Entry{DatasetID: dataset.ID, Data: record}
		if err := s.repo.InsertEntry(ctx, entry); err != nil {
			failed++
			metrics.IngestRowsTotal.WithLabelValues(job.DatasetType, "failed").Inc()
			s.log.Warn().Err(err).Int("row", i+1).Str("dataset_id", dataset.ID).
				Msg("entry insertion failed")
			continue
		}
		inserted++
		metrics.IngestRowsTotal.WithLabelValues(job.DatasetType, "inserted").Inc()
	}

	s.setState(ctx, job, ports.JobCompleted, dataset.ID, inserted, failed, "")
	s.log.Info().
		Str("job_id", job.ID).
		Str("dataset_id", dataset.ID).
		Int("rows_inserted", inserted).
		Int("rows_failed", failed).
		Msg("ingestion completed")
	return nil
}

// parseCleaned reads the cleaned file, splits it into tab-delimited rows, and
// maps them through the declared dataset type's schema.
func (s *IngestService) parseCleaned(path, datasetType string) ([]map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cleaned file: %w", err)
	}

	var rows [][]string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, ingest.DefaultDelimiter))
	}

	records, err := ingest.ParseDataset(datasetType, rows)
	if err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return records, nil
}

func (s *IngestService) fail(ctx context.Context, job ports.IngestJob, err error) error {
	s.setState(ctx, job, ports.JobFailed, "", 0, 0, err.Error())
	return err
}

// setState records a job transition. The job store is observability, not
// control flow: a failed write is logged and processing continues.
func (s *IngestService) setState(ctx context.Context, job ports.IngestJob, state, datasetID string, inserted, failed int, errMsg string) {
	err := s.jobs.Set(ctx, ports.JobStatus{
		JobID:        job.ID,
		State:        state,
		DatasetID:    datasetID,
		RowsInserted: inserted,
		RowsFailed:   failed,
		Error:        errMsg,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Str("state", state).
			Msg("failed to record job status")
	}
}
