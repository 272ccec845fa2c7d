// Package services defines shared utilities consumed by the pipeline
// components and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and sport categories for
//     logging.
//   - Structured failure markers plus the Wrap helper, and KindOf, which turns
//     any error back into the failure kind that category and batch
//     aggregation act on.
package services
