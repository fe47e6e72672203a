package service

import (
	"context"
	"math"

	"github.com/medidata/dataset-system/internal/core/ports"
)

// AnalyticsService serves the admin dashboard reads over the audit tables.
type AnalyticsService struct {
	repo ports.ActivityRepository
}

func NewAnalyticsService(repo ports.ActivityRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) UserActivity(ctx context.Context, page, limit int) (*ports.UserActivityPage, error) {
	page, limit = clampPage(page, limit)

	logs, total, err := s.repo.ListUserActivity(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &ports.UserActivityPage{
		Total:      total,
		TotalPages: totalPages(total, limit),
		Page:       page,
		Data:       logs,
	}, nil
}

func (s *AnalyticsService) DatasetUsage(ctx context.Context, page, limit int) (*ports.DatasetUsagePage, error) {
	page, limit = clampPage(page, limit)

	logs, total, err := s.repo.ListDatasetUsage(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &ports.DatasetUsagePage{
		Total:      total,
		TotalPages: totalPages(total, limit),
		Page:       page,
		Data:       logs,
	}, nil
}

func clampPage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
