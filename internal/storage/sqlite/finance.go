package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/dealdesk/internal/models"
	"github.com/mmynk/dealdesk/internal/storage"
)

// CreateSalary persists a new salary record.
func (s *SQLiteStore) CreateSalary(ctx context.Context, sal *models.Salary) error {
	if sal.ID == "" {
		sal.ID = uuid.New().String()
	}
	if sal.CreatedAt == 0 {
		sal.CreatedAt = time.Now().Unix()
	}
	tags, err := encodeTags(sal.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO salaries (id, employee, amount, paid_at, tags, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		sal.ID, sal.Employee, sal.Amount.String(), sal.PaidAt, tags, sal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert salary: %w", err)
	}
	return nil
}

// GetSalary retrieves an active salary record by ID.
func (s *SQLiteStore) GetSalary(ctx context.Context, id string) (*models.Salary, error) {
	sal := &models.Salary{}
	var amount, tags string
	var deletedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, employee, amount, paid_at, tags, created_at, deleted_at
		 FROM salaries WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Scan(&sal.ID, &sal.Employee, &amount, &sal.PaidAt, &tags, &sal.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get salary: %w", err)
	}
	if sal.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad decimal %q: %w", amount, err)
	}
	if sal.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	sal.DeletedAt = int64Ptr(deletedAt)
	return sal, nil
}

// ListSalaries returns active salary records inside the filter's
// inclusive PaidAt bounds, oldest payment first.
func (s *SQLiteStore) ListSalaries(ctx context.Context, f storage.SalaryFilter) ([]models.Salary, error) {
	query := "SELECT id, employee, amount, paid_at, tags, created_at, deleted_at FROM salaries WHERE deleted_at IS NULL"
	args := []any{}
	if f.From != 0 {
		query += " AND paid_at >= ?"
		args = append(args, f.From)
	}
	if f.To != 0 {
		query += " AND paid_at <= ?"
		args = append(args, f.To)
	}
	query += " ORDER BY paid_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}
	defer rows.Close()

	var salaries []models.Salary
	for rows.Next() {
		var sal models.Salary
		var amount, tags string
		var deletedAt sql.NullInt64
		if err := rows.Scan(&sal.ID, &sal.Employee, &amount, &sal.PaidAt, &tags, &sal.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan salary: %w", err)
		}
		if sal.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad decimal %q: %w", amount, err)
		}
		if sal.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		sal.DeletedAt = int64Ptr(deletedAt)
		salaries = append(salaries, sal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salaries: %w", err)
	}
	return salaries, nil
}

// UpdateSalary rewrites an active salary record's mutable fields.
func (s *SQLiteStore) UpdateSalary(ctx context.Context, sal *models.Salary) error {
	tags, err := encodeTags(sal.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE salaries SET employee = ?, amount = ?, paid_at = ?, tags = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		sal.Employee, sal.Amount.String(), sal.PaidAt, tags, sal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteSalary marks a salary record deleted.
func (s *SQLiteStore) SoftDeleteSalary(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE salaries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete salary: %w", err)
	}
	return checkAffected(res)
}

// CreateFixedExpense persists a new fixed expense.
func (s *SQLiteStore) CreateFixedExpense(ctx context.Context, e *models.FixedExpense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}

	var dueDay sql.NullInt64
	if e.DueDay != nil {
		dueDay = sql.NullInt64{Int64: int64(*e.DueDay), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fixed_expenses (id, name, amount, category, due_day, created_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		e.ID, e.Name, e.Amount.String(), e.Category, dueDay, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fixed expense: %w", err)
	}
	return nil
}

// GetFixedExpense retrieves an active fixed expense by ID.
func (s *SQLiteStore) GetFixedExpense(ctx context.Context, id string) (*models.FixedExpense, error) {
	e := &models.FixedExpense{}
	var amount string
	var dueDay, deletedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, amount, category, due_day, created_at, deleted_at
		 FROM fixed_expenses WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Scan(&e.ID, &e.Name, &amount, &e.Category, &dueDay, &e.CreatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixed expense: %w", err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad decimal %q: %w", amount, err)
	}
	if dueDay.Valid {
		d := int(dueDay.Int64)
		e.DueDay = &d
	}
	e.DeletedAt = int64Ptr(deletedAt)
	return e, nil
}

// ListFixedExpenses returns all active fixed expenses by name.
func (s *SQLiteStore) ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, category, due_day, created_at, deleted_at
		 FROM fixed_expenses WHERE deleted_at IS NULL ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.FixedExpense
	for rows.Next() {
		var e models.FixedExpense
		var amount string
		var dueDay, deletedAt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &amount, &e.Category, &dueDay, &e.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixed expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad decimal %q: %w", amount, err)
		}
		if dueDay.Valid {
			d := int(dueDay.Int64)
			e.DueDay = &d
		}
		e.DeletedAt = int64Ptr(deletedAt)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fixed expenses: %w", err)
	}
	return expenses, nil
}

// UpdateFixedExpense rewrites an active fixed expense's mutable fields.
func (s *SQLiteStore) UpdateFixedExpense(ctx context.Context, e *models.FixedExpense) error {
	var dueDay sql.NullInt64
	if e.DueDay != nil {
		dueDay = sql.NullInt64{Int64: int64(*e.DueDay), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE fixed_expenses SET name = ?, amount = ?, category = ?, due_day = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		e.Name, e.Amount.String(), e.Category, dueDay, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fixed expense: %w", err)
	}
	return checkAffected(res)
}

// SoftDeleteFixedExpense marks a fixed expense deleted.
func (s *SQLiteStore) SoftDeleteFixedExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE fixed_expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete fixed expense: %w", err)
	}
	return checkAffected(res)
}

// GetSettings returns the singleton settings row, seeding the default
// (25% corporate tax) when absent. The seed is an insert-or-ignore so
// two concurrent first reads cannot produce divergent rows.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.FinancialSettings, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_settings (id, corporate_tax_percent, dividend_tax_percent, updated_at)
		 VALUES (1, ?, NULL, ?) ON CONFLICT (id) DO NOTHING`,
		models.DefaultCorporateTaxPercent.String(), time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	settings := &models.FinancialSettings{}
	var corporate string
	var dividend sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT corporate_tax_percent, dividend_tax_percent, updated_at FROM financial_settings WHERE id = 1",
	).Scan(&corporate, &dividend, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.CorporateTaxPercent, err = decimal.NewFromString(corporate); err != nil {
		return nil, fmt.Errorf("bad decimal %q: %w", corporate, err)
	}
	if settings.DividendTaxPercent, err = decodeAmount(dividend); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings upserts the singleton settings row.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	if settings.UpdatedAt == 0 {
		settings.UpdatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_settings (id, corporate_tax_percent, dividend_tax_percent, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   corporate_tax_percent = excluded.corporate_tax_percent,
		   dividend_tax_percent = excluded.dividend_tax_percent,
		   updated_at = excluded.updated_at`,
		settings.CorporateTaxPercent.String(), encodeAmount(settings.DividendTaxPercent), settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
