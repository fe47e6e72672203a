package ports

import (
	"context"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// UserActivityPage is one page of the admin user-activity view.
type UserActivityPage struct {
	Total      int64
	TotalPages int
	Page       int
	Data       []*domain.UserActivity
}

// DatasetUsagePage is one page of the admin dataset-usage view.
type DatasetUsagePage struct {
	Total      int64
	TotalPages int
	Page       int
	Data       []*domain.DatasetUsage
}

// AnalyticsService serves the admin dashboard reads.
type AnalyticsService interface {
	UserActivity(ctx context.Context, page, limit int) (*UserActivityPage, error)
	DatasetUsage(ctx context.Context, page, limit int) (*DatasetUsagePage, error)
}
