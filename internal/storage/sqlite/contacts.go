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

// CreateContact persists a new contact to the database.
func (s *SQLiteStore) CreateContact(ctx context.Context, c *models.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, company, tags, notes, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, tags, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func scanContact(scan func(...any) error) (*models.Contact, error) {
	c := &models.Contact{}
	var tags string
	var deletedAt sql.NullInt64
	err := scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &tags, &c.Notes, &c.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if c.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	c.DeletedAt = int64Ptr(deletedAt)
	return c, nil
}

// GetContact retrieves an active contact by ID.
func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, company, tags, notes, created_at, deleted_at
		 FROM contacts WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	c, err := scanContact(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns all active contacts, newest first.
func (s *SQLiteStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, company, tags, notes, created_at, deleted_at
		 FROM contacts WHERE deleted_at IS NULL ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return contacts, nil
}

// UpdateContact rewrites an active contact's mutable fields.
func (s *SQLiteStore) UpdateContact(ctx context.Context, c *models.Contact) error {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, company = ?, tags = ?, notes = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		c.Name, c.Email, c.Phone, c.Company, tags, c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteContact marks a contact deleted.
func (s *SQLiteStore) SoftDeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete contact: %w", err)
	}
	return checkAffected(res)
}
