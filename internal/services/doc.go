// Package services defines shared utilities consumed by the reconciliation
// engine, the knowledge-base client, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp collection names, record keys, and run
//     session identifiers for logging and the decision journal.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (transport vs configuration vs validation) with errors.Is.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform across the tool.
package services
