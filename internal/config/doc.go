// Package config loads, normalizes, and validates the scoreflow daemon
// configuration from a TOML file. The resulting Config struct is constructed
// once at startup and passed explicitly to every component; nothing in the
// pipeline reads configuration from the process environment.
package config
