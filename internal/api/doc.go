// Package api exposes SAM-Radar screening over HTTP with gin.
//
// The API runs scans synchronously: a POST blocks until the pipeline
// finishes, stores the report and returns it. Stored reports can then be
// listed per entity, fetched by ID or exported as CSV. There is no
// authentication; the server is meant to sit behind an internal gateway.
package api
