// Package services defines shared utilities consumed by the workflow runner
// and the external-facing integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, invoice hashes, and stage names for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across the pipeline.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services
