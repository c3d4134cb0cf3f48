package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/model"
)

// DispatchRunRepository handles dispatch cycle history persistence
type DispatchRunRepository struct {
	db database.SQL
}

// NewDispatchRunRepository creates a new DispatchRunRepository
func NewDispatchRunRepository(db database.SQL) *DispatchRunRepository {
	return &DispatchRunRepository{db: db}
}

// Create inserts a new dispatch run entry
func (r *DispatchRunRepository) Create(ctx context.Context, run *model.DispatchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	metadataJSON, err := json.Marshal(run.Metadata)
	if err != nil || run.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	query := database.Rebind(r.db.Dialect(), `
		INSERT INTO dispatch_runs (id, processed, sent, cancelled, failed, error, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Processed,
		run.Sent,
		run.Cancelled,
		run.Failed,
		run.Error,
		string(metadataJSON),
		run.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first
func (r *DispatchRunRepository) ListRecent(ctx context.Context, limit int) ([]model.DispatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, database.Rebind(r.db.Dialect(), `
		SELECT id, processed, sent, cancelled, failed, error, metadata, created_at
		FROM dispatch_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch runs: %w", err)
	}
	defer rows.Close()

	var runs []model.DispatchRun
	for rows.Next() {
		var (
			run       model.DispatchRun
			metadata  string
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &run.Processed, &run.Sent, &run.Cancelled, &run.Failed, &run.Error, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch run: %w", err)
		}
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &run.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode dispatch run metadata: %w", err)
			}
		}
		run.CreatedAt = time.UnixMilli(createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dispatch runs: %w", err)
	}
	return runs, nil
}
