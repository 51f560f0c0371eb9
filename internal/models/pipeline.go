package models

import "github.com/shopspring/decimal"

// EntityType distinguishes what kind of records a pipeline tracks.
type EntityType string

const (
	EntityClient  EntityType = "client"
	EntityContact EntityType = "contact"
)

// Valid reports whether the entity type is one of the known values.
func (e EntityType) Valid() bool {
	return e == EntityClient || e == EntityContact
}

// Pipeline represents a kanban board grouping cards by stage.
type Pipeline struct {
	// ID is the unique identifier for the pipeline (UUID format).
	ID string

	// Name is the display name of the board (e.g., "Sales Q3").
	Name string

	// EntityType is what the board's cards point at: clients or contacts.
	EntityType EntityType

	// CreatedAt is the Unix timestamp when the pipeline was created.
	CreatedAt int64
}

// Card is a unit of work or opportunity tracked within a pipeline.
// Its Stage is a free-text column label, not a foreign key; renaming a
// stage rewrites the label on every active card that carries it.
type Card struct {
	// ID is the unique identifier for the card (UUID format).
	ID string

	// PipelineID is the pipeline this card belongs to.
	PipelineID string

	// Title is the display text of the card.
	Title string

	// Stage is the column label. Cards with equal labels form a column.
	Stage string

	// StageColor is the column color, duplicated on every card in the
	// column and updated together with Stage.
	StageColor string

	// Amount is the monetary value attached to the card, if any.
	Amount *decimal.Decimal

	// LeadID optionally links the card to a lead record.
	LeadID string

	// CreatedAt is the Unix timestamp when the card was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}
