// Package services defines shared utilities consumed by the pipeline stages
// and external engine integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's degrade-vs-abort decision table.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
