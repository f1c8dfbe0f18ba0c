// Package pipeline runs the screening of one entity as an ordered list of
// steps: sanctions check, alias resolution, query generation, connector
// fan-out with relevance filtering and deduplication, optional domain
// priority sorting, and risk scoring.
//
// Design decision: Each stage is a Step that reads and extends the
// ScanReport, so stages can be tested alone and the CLI and HTTP API share
// one ordering.
//
// Multiple entities are screened concurrently by BatchProcessor, which
// gives every entity a fresh pipeline.
package pipeline
