// Package daemon runs the scoreflow service: it enforces single-instance
// execution via a lock file, serves the HTTP API, and runs the background
// workspace reaper. The daemon owns process lifecycle; per-request semantics
// live in the pipeline package.
package daemon
