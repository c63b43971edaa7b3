// Package workspace owns the per-session scratch directory lifecycle:
// uniquely-named acquisition under the scratch root, idempotent release, a
// startup preflight on the scratch filesystem, and the background reaper
// that enforces the post-response grace window and sweeps orphans.
package workspace
