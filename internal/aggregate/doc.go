// Package aggregate merges connector hits into the deduplicated result list
// of a scan and optionally reorders it by domain priority.
//
// Hits must be added in connector-priority order. A hit is dropped when its
// link is empty, when its normalized link key was already kept, or when the
// relevance filter rejects it. The first hit kept for a key wins. The
// result cap is soft: Add never cuts a batch short, and callers check Full
// after each batch to decide whether to issue further queries.
package aggregate
