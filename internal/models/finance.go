package models

import "github.com/shopspring/decimal"

// Salary represents one salary payment record.
type Salary struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// Employee is the display name of the person paid.
	Employee string

	// Amount is the gross amount paid.
	Amount decimal.Decimal

	// PaidAt is the Unix timestamp of the payment date. Month filtering
	// operates on this field.
	PaidAt int64

	// Tags is an ordered list of labels. Never nil; empty when unset.
	Tags []string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}

// FixedExpense represents a recurring monthly cost (rent, tooling, ...).
type FixedExpense struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// Name is the display label of the expense.
	Name string

	// Amount is the monthly cost.
	Amount decimal.Decimal

	// Category is a free-text grouping label.
	Category string

	// DueDay is the day of month the expense falls due (1-31); nil if
	// unset.
	DueDay *int

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}

// DefaultCorporateTaxPercent seeds FinancialSettings on first read.
var DefaultCorporateTaxPercent = decimal.NewFromInt(25)

// FinancialSettings is a singleton row (id fixed at 1) holding the
// company-wide financial configuration. It is upserted, never
// soft-deleted; absence triggers creation with defaults on first read.
type FinancialSettings struct {
	// CorporateTaxPercent is the corporate tax rate. Defaults to 25.
	CorporateTaxPercent decimal.Decimal

	// DividendTaxPercent is the dividend tax rate; nil when not
	// configured (nil, not zero).
	DividendTaxPercent *decimal.Decimal

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
