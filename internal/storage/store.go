// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/dealdesk/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist or
// has been soft-deleted.
var ErrNotFound = errors.New("not found")

// SalaryFilter narrows salary listings. Zero bounds mean unbounded.
type SalaryFilter struct {
	// From and To are inclusive Unix-second bounds on PaidAt.
	From int64
	To   int64
}

// InvoiceExportFilter selects invoices for export. IDs takes precedence
// over Status when both are set.
type InvoiceExportFilter struct {
	IDs    []string
	Status models.InvoiceStatus
	// From and To are inclusive Unix-second bounds on IssuedAt.
	// Zero means unbounded.
	From int64
	To   int64
}

// Store defines the interface for dealdesk storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the handler layer.
type Store interface {
	// Sessions.

	// CreateSession persists a login session. The session.ID field will
	// be populated by the store if empty.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by id. Returns ErrNotFound for
	// unknown ids; expiry is the caller's concern.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// DeleteSession removes a session row. Deleting an unknown id is
	// not an error.
	DeleteSession(ctx context.Context, id string) error

	// Pipelines and cards.

	// CreatePipeline persists a new pipeline and populates ID/CreatedAt.
	CreatePipeline(ctx context.Context, p *models.Pipeline) error

	// GetPipeline retrieves a pipeline by id.
	GetPipeline(ctx context.Context, id string) (*models.Pipeline, error)

	// ListPipelines returns all pipelines, optionally filtered by
	// entity type (empty = all).
	ListPipelines(ctx context.Context, entityType models.EntityType) ([]models.Pipeline, error)

	// DeletePipeline soft-deletes every active card of the pipeline and
	// then hard-deletes the pipeline row, in one transaction and in
	// that order.
	DeletePipeline(ctx context.Context, id string) error

	// ListCards returns the active (non-soft-deleted) cards of a
	// pipeline.
	ListCards(ctx context.Context, pipelineID string) ([]models.Card, error)

	// CreateCard persists a new card and populates ID/CreatedAt.
	CreateCard(ctx context.Context, c *models.Card) error

	// GetCard retrieves an active card by id.
	GetCard(ctx context.Context, id string) (*models.Card, error)

	// UpdateCard rewrites an active card's mutable fields.
	UpdateCard(ctx context.Context, c *models.Card) error

	// SoftDeleteCard marks a card deleted.
	SoftDeleteCard(ctx context.Context, id string) error

	// RenameStage sets stage and stage_color on every active card of
	// the pipeline whose stage equals oldStage, as a single statement.
	// Returns the number of cards updated.
	RenameStage(ctx context.Context, pipelineID, oldStage, newStage, newColor string) (int64, error)

	// CountStageCards counts active cards of the pipeline carrying the
	// stage label.
	CountStageCards(ctx context.Context, pipelineID, stage string) (int, error)

	// Leads.

	CreateLead(ctx context.Context, l *models.Lead) error
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	ListLeads(ctx context.Context) ([]models.Lead, error)
	UpdateLead(ctx context.Context, l *models.Lead) error
	SoftDeleteLead(ctx context.Context, id string) error

	// Contacts.

	CreateContact(ctx context.Context, c *models.Contact) error
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	SoftDeleteContact(ctx context.Context, id string) error

	// Invoices.

	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	SoftDeleteInvoice(ctx context.Context, id string) error

	// ExportInvoices returns active invoices matching the filter.
	ExportInvoices(ctx context.Context, f InvoiceExportFilter) ([]models.Invoice, error)

	// Finance.

	CreateSalary(ctx context.Context, s *models.Salary) error
	GetSalary(ctx context.Context, id string) (*models.Salary, error)
	ListSalaries(ctx context.Context, f SalaryFilter) ([]models.Salary, error)
	UpdateSalary(ctx context.Context, s *models.Salary) error
	SoftDeleteSalary(ctx context.Context, id string) error

	CreateFixedExpense(ctx context.Context, e *models.FixedExpense) error
	GetFixedExpense(ctx context.Context, id string) (*models.FixedExpense, error)
	ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error)
	UpdateFixedExpense(ctx context.Context, e *models.FixedExpense) error
	SoftDeleteFixedExpense(ctx context.Context, id string) error

	// GetSettings returns the singleton financial settings row,
	// creating it with defaults (25% corporate tax) when absent.
	GetSettings(ctx context.Context) (*models.FinancialSettings, error)

	// UpdateSettings upserts the singleton settings row.
	UpdateSettings(ctx context.Context, s *models.FinancialSettings) error

	// Ping verifies database connectivity with a trivial probe query.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
