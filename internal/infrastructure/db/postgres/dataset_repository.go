package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

type DatasetRepository struct {
	pool *pgxpool.Pool
}

func NewDatasetRepository(pool *pgxpool.Pool) *DatasetRepository {
	return &DatasetRepository{pool: pool}
}

func (r *DatasetRepository) Create(ctx context.Context, d *domain.Dataset) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO datasets (id, name, description, file_path, type, uploaded_by, uploaded_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		d.ID, d.Name, d.Description, d.FilePath, d.Type, d.UploadedBy, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	return nil
}

func (r *DatasetRepository) FindByID(ctx context.Context, id string) (*domain.Dataset, error) {
	var d domain.Dataset
	var filePath *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, file_path, type, uploaded_by, uploaded_at
		 FROM datasets WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Description, &filePath, &d.Type, &d.UploadedBy, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("find dataset: %w", err)
	}
	if filePath != nil {
		d.FilePath = *filePath
	}
	return &d, nil
}

func (r *DatasetRepository) List(ctx context.Context) ([]*domain.Dataset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.name, d.description, d.file_path, d.type, d.uploaded_by, d.uploaded_at,
		        COUNT(e.id) AS entry_count
		 FROM datasets d
		 LEFT JOIN dataset_entries e ON e.dataset_id = d.id
		 GROUP BY d.id
		 ORDER BY d.uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*domain.Dataset
	for rows.Next() {
		var d domain.Dataset
		var filePath *string
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &filePath, &d.Type,
			&d.UploadedBy, &d.UploadedAt, &d.EntryCount); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		if filePath != nil {
			d.FilePath = *filePath
		}
		datasets = append(datasets, &d)
	}
	return datasets, rows.Err()
}

// Delete removes usage logs, entries, and the dataset row in one transaction
// so a crash mid-delete cannot leave orphans.
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete dataset: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM dataset_usage WHERE dataset_id = $1`, id); err != nil {
		return fmt.Errorf("delete usage logs: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM dataset_entries WHERE dataset_id = $1`, id); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDatasetNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("delete dataset: commit: %w", err)
	}
	return nil
}

func (r *DatasetRepository) InsertEntry(ctx context.Context, e *domain.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal entry data: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO dataset_entries (id, dataset_id, data, created_at)
		 VALUES ($1, $2, $3, $4)`,
		e.ID, e.DatasetID, data, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// escapeLikeTerm neutralizes LIKE/ILIKE pattern metacharacters in a
// user-supplied search term so "100%" matches the literal string, not
// everything.
func escapeLikeTerm(term string) string {
	return likeEscaper.Replace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *DatasetRepository) ListEntries(ctx context.Context, filter ports.ListEntriesFilter) ([]*domain.Entry, int64, error) {
	where := `dataset_id = $1`
	args := []any{filter.DatasetID}
	if filter.SearchTerm != "" {
		// Prefix match on code, substring match on description.
		where += ` AND (data->>'code' ILIKE $2 || '%' OR data->>'description' ILIKE '%' || $2 || '%')`
		args = append(args, escapeLikeTerm(filter.SearchTerm))
	}

	var count int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dataset_entries WHERE `+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(
		`SELECT id, dataset_id, data, created_at FROM dataset_entries
		 WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		var data []byte
		if err := rows.Scan(&e.ID, &e.DatasetID, &data, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal(data, &e.Data); err != nil {
			return nil, 0, fmt.Errorf("unmarshal entry data: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, count, rows.Err()
}
