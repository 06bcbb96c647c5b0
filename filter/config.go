// Package filter implements the remove-columns stage: it resolves a
// column-selection directive against an input schema and transcodes
// pages of records onto the derived output schema.
package filter

// Config is the column-selection directive for one transaction.
// Exactly one of Remove or Keep must be populated; Resolve rejects
// anything else.
type Config struct {
	// Remove lists columns to drop; the output schema is the input
	// schema minus these columns.
	Remove []string
	// Keep lists columns to retain; the output schema is exactly these
	// columns, in input order.
	Keep []string
	// AcceptUnmatchedColumns silently skips directive names that do not
	// exist in the input schema instead of rejecting the configuration.
	AcceptUnmatchedColumns bool
}
