// Command scoreflow is the operator CLI for the scoreflow daemon. It talks
// to the daemon's HTTP API using the configured bearer token: checking
// health, listing sessions, and submitting score files for processing.
package main
