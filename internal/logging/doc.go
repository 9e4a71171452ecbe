// Package logging builds the slog loggers used across the pipeline. It
// offers a human console format and a JSON format, plus helpers for
// component-scoped loggers and standardized attribute keys.
package logging
