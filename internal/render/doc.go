// Package render partitions a score's measures into fixed-size groups and
// produces one encoded preview image per group, either through the external
// rendering engine or through a deterministic placeholder when the engine is
// absent or fails. Output order always matches ascending measure order even
// when groups render concurrently.
package render
