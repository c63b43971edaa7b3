// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal pipeline and ledger models into
// transport-friendly DTOs so the HTTP handlers never couple to internal
// types.
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Timestamps use RFC3339 with milliseconds. The success payload never
// distinguishes real engine output from placeholder content; degradation is
// visible only in logs.
package api
