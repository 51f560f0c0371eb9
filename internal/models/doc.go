// Package models defines the core domain models for dealdesk.
//
// Conventions:
//   - IDs are UUID strings generated by the storage layer.
//   - Timestamps are Unix seconds (int64); the API layer renders them
//     as ISO-8601 strings.
//   - Monetary fields use shopspring decimals so aggregation does not
//     accumulate float error; the API layer serializes them as plain
//     JSON numbers.
//   - Soft-deletable records carry a nullable DeletedAt; nil means
//     active. Storage queries exclude soft-deleted rows unless stated
//     otherwise.
//
// Stages are intentionally NOT a model: a stage is an emergent grouping
// of cards sharing the same Stage label within a pipeline. It exists
// only while at least one card references it.
package models
