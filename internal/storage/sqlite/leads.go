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

// CreateLead persists a new lead to the database.
func (s *SQLiteStore) CreateLead(ctx context.Context, l *models.Lead) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().Unix()
	}
	tags, err := encodeTags(l.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, phone, company, status, tags, notes, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Status, tags, l.Notes, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

func scanLead(scan func(...any) error) (*models.Lead, error) {
	l := &models.Lead{}
	var tags string
	var deletedAt sql.NullInt64
	err := scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Status, &tags, &l.Notes, &l.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if l.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	l.DeletedAt = int64Ptr(deletedAt)
	return l, nil
}

// GetLead retrieves an active lead by ID.
func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, company, status, tags, notes, created_at, deleted_at
		 FROM leads WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	l, err := scanLead(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return l, nil
}

// ListLeads returns all active leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, company, status, tags, notes, created_at, deleted_at
		 FROM leads WHERE deleted_at IS NULL ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// UpdateLead rewrites an active lead's mutable fields.
func (s *SQLiteStore) UpdateLead(ctx context.Context, l *models.Lead) error {
	tags, err := encodeTags(l.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, email = ?, phone = ?, company = ?, status = ?, tags = ?, notes = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		l.Name, l.Email, l.Phone, l.Company, l.Status, tags, l.Notes, l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteLead marks a lead deleted.
func (s *SQLiteStore) SoftDeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE leads SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete lead: %w", err)
	}
	return checkAffected(res)
}
