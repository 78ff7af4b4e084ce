// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp episode numbers, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (missing inputs, empty asset directories,
//     upstream rejections, filesystem and encoder failures).
package services
