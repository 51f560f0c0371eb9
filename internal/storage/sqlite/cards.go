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

// CreateCard persists a new card to the database.
func (s *SQLiteStore) CreateCard(ctx context.Context, c *models.Card) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, pipeline_id, title, stage, stage_color, amount, lead_id, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.PipelineID, c.Title, c.Stage, c.StageColor, encodeAmount(c.Amount), c.LeadID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// GetCard retrieves an active card by ID.
func (s *SQLiteStore) GetCard(ctx context.Context, id string) (*models.Card, error) {
	c := &models.Card{}
	var amount sql.NullString
	var deletedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, pipeline_id, title, stage, stage_color, amount, lead_id, created_at, deleted_at
		 FROM cards WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Scan(&c.ID, &c.PipelineID, &c.Title, &c.Stage, &c.StageColor, &amount, &c.LeadID, &c.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if c.Amount, err = decodeAmount(amount); err != nil {
		return nil, err
	}
	c.DeletedAt = int64Ptr(deletedAt)
	return c, nil
}

// ListCards returns the active cards of a pipeline in creation order.
func (s *SQLiteStore) ListCards(ctx context.Context, pipelineID string) ([]models.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pipeline_id, title, stage, stage_color, amount, lead_id, created_at, deleted_at
		 FROM cards WHERE pipeline_id = ? AND deleted_at IS NULL ORDER BY created_at`,
		pipelineID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		var amount sql.NullString
		var deletedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.PipelineID, &c.Title, &c.Stage, &c.StageColor, &amount, &c.LeadID, &c.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if c.Amount, err = decodeAmount(amount); err != nil {
			return nil, err
		}
		c.DeletedAt = int64Ptr(deletedAt)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// UpdateCard rewrites an active card's mutable fields.
func (s *SQLiteStore) UpdateCard(ctx context.Context, c *models.Card) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET title = ?, stage = ?, stage_color = ?, amount = ?, lead_id = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		c.Title, c.Stage, c.StageColor, encodeAmount(c.Amount), c.LeadID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteCard marks a card deleted.
func (s *SQLiteStore) SoftDeleteCard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cards SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete card: %w", err)
	}
	return checkAffected(res)
}

// checkAffected maps a zero-row write to ErrNotFound.
func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
