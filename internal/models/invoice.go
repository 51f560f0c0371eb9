package models

import "github.com/shopspring/decimal"

// InvoiceStatus tracks where an invoice is in its lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Valid reports whether the status is one of the known values.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// Invoice represents a billing document issued to a client.
type Invoice struct {
	// ID is the unique identifier for the invoice (UUID format).
	ID string

	// Number is the human-facing invoice number (e.g., "2026-0042").
	Number string

	// ClientName is the billed party's display name.
	ClientName string

	// Amount is the invoiced total.
	Amount decimal.Decimal

	// Status is the lifecycle state of the invoice.
	Status InvoiceStatus

	// IssuedAt is the Unix timestamp of the issue date.
	IssuedAt int64

	// DueAt is the Unix timestamp of the due date; nil if unset.
	DueAt *int64

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}
