package ports

import (
	"context"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// EntriesInput carries all parameters for the entries query endpoint.
type EntriesInput struct {
	DatasetID  string
	SearchTerm string
	Page       int
	Limit      int
	// UserID attributes the search/view audit record; may be empty.
	UserID string
	IP     string
}

// EntriesResult is one page of dataset entries.
type EntriesResult struct {
	Entries    []*domain.Entry
	Count      int64
	Page       int
	TotalPages int
}

// DeleteDatasetInput identifies the dataset to remove and the acting user.
type DeleteDatasetInput struct {
	DatasetID string
	UserID    string
	IP        string
}

// DatasetService defines use-case operations on existing datasets.
type DatasetService interface {
	List(ctx context.Context) ([]*domain.Dataset, error)
	Entries(ctx context.Context, input EntriesInput) (*EntriesResult, error)
	Delete(ctx context.Context, input DeleteDatasetInput) error
}
