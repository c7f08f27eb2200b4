// Package logging assembles the structured slog loggers used across Scribe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized field keys so batch code tags log
// lines with item and batch identifiers consistently. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
