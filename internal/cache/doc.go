// Package cache provides a Redis-backed source.Fetcher that remembers
// successful connector responses for a configurable time, so repeated
// scans of the same entity do not hit rate-limited services again.
package cache
