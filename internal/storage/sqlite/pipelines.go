package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

// CreatePipeline persists a new pipeline to the database.
func (s *SQLiteStore) CreatePipeline(ctx context.Context, p *models.Pipeline) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pipelines (id, name, entity_type, created_at) VALUES (?, ?, ?, ?)",
		p.ID, p.Name, string(p.EntityType), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pipeline: %w", err)
	}
	return nil
}

// GetPipeline retrieves a pipeline by ID.
func (s *SQLiteStore) GetPipeline(ctx context.Context, id string) (*models.Pipeline, error) {
	p := &models.Pipeline{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, entity_type, created_at FROM pipelines WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.EntityType, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}
	return p, nil
}

// ListPipelines returns all pipelines, newest first. An empty entityType
// returns every pipeline.
func (s *SQLiteStore) ListPipelines(ctx context.Context, entityType models.EntityType) ([]models.Pipeline, error) {
	query := "SELECT id, name, entity_type, created_at FROM pipelines"
	args := []any{}
	if entityType != "" {
		query += " WHERE entity_type = ?"
		args = append(args, string(entityType))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []models.Pipeline
	for rows.Next() {
		var p models.Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.EntityType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}
		pipelines = append(pipelines, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pipelines: %w", err)
	}
	return pipelines, nil
}

// DeletePipeline soft-deletes the pipeline's active cards and then
// hard-deletes the pipeline row. The card marking must land before the
// parent removal so reports querying cards by pipeline_id keep working.
func (s *SQLiteStore) DeletePipeline(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx,
		"UPDATE cards SET deleted_at = ? WHERE pipeline_id = ? AND deleted_at IS NULL",
		now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete cards: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM pipelines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RenameStage rewrites stage and stage_color on every active card of
// the pipeline carrying oldStage. A single UPDATE keeps the label and
// color change atomic across the column.
func (s *SQLiteStore) RenameStage(ctx context.Context, pipelineID, oldStage, newStage, newColor string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET stage = ?, stage_color = ? WHERE pipeline_id = ? AND stage = ? AND deleted_at IS NULL",
		newStage, newColor, pipelineID, oldStage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to rename stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

// CountStageCards counts active cards of the pipeline with the given
// stage label.
func (s *SQLiteStore) CountStageCards(ctx context.Context, pipelineID, stage string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cards WHERE pipeline_id = ? AND stage = ? AND deleted_at IS NULL",
		pipelineID, stage,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count stage cards: %w", err)
	}
	return count, nil
}
