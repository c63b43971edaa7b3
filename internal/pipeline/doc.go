// Package pipeline sequences the per-session processing stages: workspace
// acquisition, notation conversion, metadata extraction, paged preview
// rendering, and result assembly. The orchestrator owns the degradation
// policy: engine failures fall back to deterministic placeholders, while
// validation and storage failures abort the session.
package pipeline
