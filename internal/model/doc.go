// Package model defines the core data structures used throughout SAM-Radar.
//
// This package contains the following main types:
//   - Hit: A raw search hit returned by a source connector
//   - Result: A relevant, deduplicated hit with its derived risk level
//   - SanctionHit: A sanctions/watchlist record, kept apart from adverse media
//   - ScanReport: The complete outcome of screening one entity
//   - ScanDiff: The difference between two stored scans of the same entity
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The pipeline, connectors, report writers and storage all need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
