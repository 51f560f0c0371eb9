package models

// Lead represents a sales lead being worked toward a deal.
type Lead struct {
	// ID is the unique identifier for the lead (UUID format).
	ID string

	// Name is the lead's display name. Required.
	Name string

	// Email is the lead's contact email.
	Email string

	// Phone is the lead's contact phone number.
	Phone string

	// Company is the organization the lead belongs to.
	Company string

	// Status is a free-text qualifier (e.g., "new", "qualified").
	Status string

	// Tags is an ordered list of labels. Never nil; empty when unset.
	Tags []string

	// Notes holds free-form remarks.
	Notes string

	// CreatedAt is the Unix timestamp when the lead was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}

// Contact represents an address-book entry, the counterpart to Lead for
// pipelines of entity type "contact".
type Contact struct {
	// ID is the unique identifier for the contact (UUID format).
	ID string

	// Name is the contact's display name. Required.
	Name string

	// Email is the contact's email address.
	Email string

	// Phone is the contact's phone number.
	Phone string

	// Company is the organization the contact belongs to.
	Company string

	// Tags is an ordered list of labels. Never nil; empty when unset.
	Tags []string

	// Notes holds free-form remarks.
	Notes string

	// CreatedAt is the Unix timestamp when the contact was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of soft deletion; nil = active.
	DeletedAt *int64
}
