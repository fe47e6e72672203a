package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/medidata/dataset-system/internal/api/metrics"
	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// DatasetService implements the read and delete use-cases on datasets.
// Uploads go through the ingestion pipeline instead.
type DatasetService struct {
	repo     ports.DatasetRepository
	activity ports.ActivityLogger
	log      zerolog.Logger
}

func NewDatasetService(repo ports.DatasetRepository, activity ports.ActivityLogger, log zerolog.Logger) *DatasetService {
	return &DatasetService{repo: repo, activity: activity, log: log}
}

// List returns all dataset metadata, newest upload first.
func (s *DatasetService) List(ctx context.Context) ([]*domain.Dataset, error) {
	return s.repo.List(ctx)
}

// Entries returns one page of a dataset's entries. A search term is audited
// as a "search" usage event; a plain page fetch is audited as a dataset view.
func (s *DatasetService) Entries(ctx context.Context, input ports.EntriesInput) (*ports.EntriesResult, error) {
	dataset, err := s.repo.FindByID(ctx, input.DatasetID)
	if err != nil {
		return nil, err
	}

	if input.SearchTerm != "" {
		metrics.EntrySearchesTotal.WithLabelValues("search").Inc()
		s.activity.LogDatasetUsage(ctx, dataset.ID, domain.UsageSearch, input.SearchTerm, input.UserID)
	} else {
		metrics.EntrySearchesTotal.WithLabelValues("view").Inc()
		s.activity.LogUserActivity(ctx, input.UserID, domain.ActionViewDataset,
			fmt.Sprintf("Viewed dataset %q", dataset.Name), input.IP)
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	entries, count, err := s.repo.ListEntries(ctx, ports.ListEntriesFilter{
		DatasetID:  input.DatasetID,
		SearchTerm: input.SearchTerm,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.EntriesResult{
		Entries:    entries,
		Count:      count,
		Page:       page,
		TotalPages: int(math.Ceil(float64(count) / float64(limit))),
	}, nil
}

// Delete removes a dataset together with its entries and usage logs, then
// records the deletion in the actor's activity trail.
func (s *DatasetService) Delete(ctx context.Context, input ports.DeleteDatasetInput) error {
	dataset, err := s.repo.FindByID(ctx, input.DatasetID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, input.DatasetID); err != nil {
		return err
	}

	s.log.Info().Str("dataset_id", dataset.ID).Str("name", dataset.Name).Msg("dataset deleted")
	s.activity.LogUserActivity(ctx, input.UserID, domain.ActionDatasetDelete,
		fmt.Sprintf("Deleted dataset %q", dataset.Name), input.IP)
	return nil
}
