package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medidata/dataset-system/internal/core/domain"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) InsertUserActivity(ctx context.Context, a *domain.UserActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_activity (id, user_id, action_type, action_details, ip_address, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.ActionType, a.ActionDetails, a.IPAddress, a.Timestamp)
	if err != nil {
		return fmt.Errorf("insert user activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) InsertDatasetUsage(ctx context.Context, u *domain.DatasetUsage) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now().UTC()
	}
	if u.UsageCount <= 0 {
		u.UsageCount = 1
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO dataset_usage (id, dataset_id, user_id, action_type, search_term, usage_count, timestamp)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7)`,
		u.ID, u.DatasetID, u.UserID, u.ActionType, u.SearchTerm, u.UsageCount, u.Timestamp)
	if err != nil {
		return fmt.Errorf("insert dataset usage: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListUserActivity(ctx context.Context, page, limit int) ([]*domain.UserActivity, int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_activity`).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count user activity: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, a.action_type, a.action_details, a.ip_address, a.timestamp,
		        COALESCE(u.email, 'Unknown')
		 FROM user_activity a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.timestamp DESC
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list user activity: %w", err)
	}
	defer rows.Close()

	var logs []*domain.UserActivity
	for rows.Next() {
		var a domain.UserActivity
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActionType, &a.ActionDetails,
			&a.IPAddress, &a.Timestamp, &a.UserEmail); err != nil {
			return nil, 0, fmt.Errorf("scan user activity: %w", err)
		}
		logs = append(logs, &a)
	}
	return logs, count, rows.Err()
}

func (r *ActivityRepository) ListDatasetUsage(ctx context.Context, page, limit int) ([]*domain.DatasetUsage, int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dataset_usage`).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count dataset usage: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.dataset_id, COALESCE(g.user_id::text, ''), g.action_type,
		        COALESCE(g.search_term, ''), g.usage_count, g.timestamp,
		        COALESCE(d.name, 'Unknown')
		 FROM dataset_usage g
		 LEFT JOIN datasets d ON d.id = g.dataset_id
		 ORDER BY g.timestamp DESC
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list dataset usage: %w", err)
	}
	defer rows.Close()

	var logs []*domain.DatasetUsage
	for rows.Next() {
		var u domain.DatasetUsage
		if err := rows.Scan(&u.ID, &u.DatasetID, &u.UserID, &u.ActionType,
			&u.SearchTerm, &u.UsageCount, &u.Timestamp, &u.DatasetName); err != nil {
			return nil, 0, fmt.Errorf("scan dataset usage: %w", err)
		}
		logs = append(logs, &u)
	}
	return logs, count, rows.Err()
}
