// Package dataset persists the canonical film dataset in SQLite. The
// dataset is treated as a value: Load reads it whole, Save replaces it
// whole inside one transaction, so a failed run never leaves a partially
// written store behind. Archived sessions accumulate in their own table.
package dataset
