package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

// CreateInvoice persists a new invoice to the database.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, number, client_name, amount, status, issued_at, due_at, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		inv.ID, inv.Number, inv.ClientName, inv.Amount.String(), string(inv.Status),
		inv.IssuedAt, nullInt64(inv.DueAt), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

func scanInvoice(scan func(...any) error) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var amount string
	var dueAt, deletedAt sql.NullInt64
	err := scan(&inv.ID, &inv.Number, &inv.ClientName, &amount, &inv.Status, &inv.IssuedAt, &dueAt, &inv.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad decimal %q: %w", amount, err)
	}
	inv.DueAt = int64Ptr(dueAt)
	inv.DeletedAt = int64Ptr(deletedAt)
	return inv, nil
}

const invoiceColumns = "id, number, client_name, amount, status, issued_at, due_at, created_at, deleted_at"

// GetInvoice retrieves an active invoice by ID.
func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = ? AND deleted_at IS NULL",
		id,
	)
	inv, err := scanInvoice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices returns all active invoices, newest issue date first.
func (s *SQLiteStore) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE deleted_at IS NULL ORDER BY issued_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return collectInvoices(rows)
}

// ExportInvoices returns active invoices matching the filter: an
// explicit id list OR a status, intersected with an issue-date range.
func (s *SQLiteStore) ExportInvoices(ctx context.Context, f storage.InvoiceExportFilter) ([]models.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE deleted_at IS NULL"
	args := []any{}

	switch {
	case len(f.IDs) > 0:
		query += " AND id IN (?" + strings.Repeat(", ?", len(f.IDs)-1) + ")"
		for _, id := range f.IDs {
			args = append(args, id)
		}
	case f.Status != "":
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}

	if f.From != 0 {
		query += " AND issued_at >= ?"
		args = append(args, f.From)
	}
	if f.To != 0 {
		query += " AND issued_at <= ?"
		args = append(args, f.To)
	}
	query += " ORDER BY issued_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to export invoices: %w", err)
	}
	return collectInvoices(rows)
}

func collectInvoices(rows *sql.Rows) ([]models.Invoice, error) {
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

// UpdateInvoice rewrites an active invoice's mutable fields.
func (s *SQLiteStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET number = ?, client_name = ?, amount = ?, status = ?, issued_at = ?, due_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		inv.Number, inv.ClientName, inv.Amount.String(), string(inv.Status),
		inv.IssuedAt, nullInt64(inv.DueAt), inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteInvoice marks an invoice deleted.
func (s *SQLiteStore) SoftDeleteInvoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete invoice: %w", err)
	}
	return checkAffected(res)
}
