// Package logging wraps log/slog with scoreflow conventions: console or JSON
// handlers fanned out to stdout and the daemon log file, standardized field
// keys, and helpers that derive session/stage attributes from a context.
package logging
