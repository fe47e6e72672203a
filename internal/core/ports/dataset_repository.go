package ports

import (
	"context"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// ListEntriesFilter carries query parameters for paging through entries.
type ListEntriesFilter struct {
	DatasetID  string
	SearchTerm string // optional: prefix match on code OR substring match on description, case-insensitive
	Page       int    // 1-based
	Limit      int    // rows per page
}

// DatasetRepository defines persistence operations for datasets and entries.
type DatasetRepository interface {
	Create(ctx context.Context, d *domain.Dataset) error
	FindByID(ctx context.Context, id string) (*domain.Dataset, error)
	// List returns all datasets newest-upload-first, each with its entry count.
	List(ctx context.Context) ([]*domain.Dataset, error)
	// Delete removes the dataset's usage logs, entries, and the dataset row
	// in a single transaction. Returns domain.ErrDatasetNotFound when absent.
	Delete(ctx context.Context, id string) error
	InsertEntry(ctx context.Context, e *domain.Entry) error
	// ListEntries returns one page of entries newest-first and the total count
	// of entries matching the filter.
	ListEntries(ctx context.Context, filter ListEntriesFilter) ([]*domain.Entry, int64, error)
}
