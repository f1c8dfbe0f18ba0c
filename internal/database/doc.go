// Package database provides SQLite-based storage for SAM-Radar scan history.
//
// This package implements the ScanDB, which stores every completed scan
// report as JSON together with its risk summary, so that repeated scans of
// the same entity can be listed and compared.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance for the HTTP API
package database
