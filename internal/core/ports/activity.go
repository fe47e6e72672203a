package ports

import (
	"context"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// ActivityRepository persists append-only audit records and serves the
// admin analytics reads.
type ActivityRepository interface {
	InsertUserActivity(ctx context.Context, a *domain.UserActivity) error
	InsertDatasetUsage(ctx context.Context, u *domain.DatasetUsage) error
	// ListUserActivity returns one page newest-first with user emails resolved,
	// plus the total record count.
	ListUserActivity(ctx context.Context, page, limit int) ([]*domain.UserActivity, int64, error)
	// ListDatasetUsage returns one page newest-first with dataset names
	// resolved, plus the total record count.
	ListDatasetUsage(ctx context.Context, page, limit int) ([]*domain.DatasetUsage, int64, error)
}

// ActivityLogger records audit events. Implementations never propagate
// persistence failures: a lost audit record must not fail the operation that
// produced it.
type ActivityLogger interface {
	LogUserActivity(ctx context.Context, userID, actionType, details, ip string)
	LogDatasetUsage(ctx context.Context, datasetID, actionType, searchTerm, userID string)
}
